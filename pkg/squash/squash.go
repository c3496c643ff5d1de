// 29 April 2020

// Package squash removes columns from a multiple sequence alignment.
// A mask says which columns to keep. The mask can come from a reference
// sequence (drop columns where it has a gap) or from the whole set (drop
// columns where every sequence has a gap).
package squash

import (
	"fmt"

	"github.com/andrew-torda/homologs/pkg/seq"
	. "github.com/andrew-torda/homologs/pkg/seq/common"
)

// RefMask marks the columns where the reference sequence has a residue.
func RefMask(ref []byte) []bool {
	mask := make([]bool, len(ref))
	for i, c := range ref {
		mask[i] = c != GapChar
	}
	return mask
}

// AllGapMask marks the columns that have a residue in at least one
// sequence. Columns that are nothing but gaps are false.
func AllGapMask(seqslc []seq.Seq) []bool {
	if len(seqslc) == 0 {
		return nil
	}
	mask := make([]bool, seqslc[0].Len())
	for _, ss := range seqslc {
		for i, c := range ss.GetSeq() {
			if i < len(mask) && c != GapChar {
				mask[i] = true
			}
		}
	}
	return mask
}

// Apply keeps the columns where mask is true, in place. Every sequence
// has to be the same length as the mask.
func Apply(seqslc []seq.Seq, mask []bool) error {
	const emsg = "length mismatch mask: %d seq %d len %d"
	nfullseq := len(mask)
	for i, ss := range seqslc {
		if ss.Len() != nfullseq {
			return fmt.Errorf(emsg, nfullseq, i, ss.Len())
		}
	}
	for i := range seqslc {
		b := seqslc[i].GetSeq()[:0]
		for j, c := range seqslc[i].GetSeq() {
			if mask[j] {
				b = append(b, c)
			}
		}
		seqslc[i].SetSeq(b) // do not use a range copy here
	}
	return nil
}

// AllGapCols removes columns in which every sequence has a gap.
func AllGapCols(seqslc []seq.Seq) error {
	return Apply(seqslc, AllGapMask(seqslc))
}
