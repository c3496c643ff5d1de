// 6 Apr 2020
// seqcalc does simple, common calculations on a set of sequences.
// The functions have to live in this package, since they
// need access to the internals of a sequence

package seq

import (
	. "github.com/andrew-torda/homologs/pkg/seq/common"
)

// SetSymUsed fills out the bool slice which says whether or not a
// symbol was used. Gaps do not count.
func (seqgrp *SeqGrp) SetSymUsed() {
	seqgrp.symUsed = [MaxSym]bool{}
	for _, ss := range seqgrp.seqs {
		for _, c := range ss.GetSeq() {
			if c < MaxSym && c != GapChar {
				seqgrp.symUsed[c] = true
			}
		}
	}
	seqgrp.usedKnwn = true
}

// GetType looks at a set of sequences and returns its best guess
// as to the type of file. It only looks at upper case letters, so
// call Upper() first if the input might be lower case.
func (seqgrp *SeqGrp) GetType() SeqType {
	if seqgrp.stype != Unchecked { // If the sequence type has been
		return seqgrp.stype //      set, just return it.
	}

	if !seqgrp.usedKnwn {
		seqgrp.SetSymUsed()
	}
	protType := []byte{
		'D', 'E', 'F', 'H', 'I', 'K', 'L', 'M',
		'N', 'P', 'Q', 'R', 'S', 'V', 'W', 'Y'}

	used := seqgrp.symUsed
	seqgrp.stype = Unknown
	for _, c := range protType { // If we see an amino acid code,
		if used[c] { //          just return protein type.
			seqgrp.stype = Protein
			return seqgrp.stype
		}
	}

	switch {
	case used['T'] && used['U']:
		seqgrp.stype = Ntide
	// If we have ACG, but neither T or U, it is a nucleotide
	// but we cannot tell if it is RNA or DNA
	case used['A'] && used['C'] && used['G'] && !used['T'] && !used['U']:
		seqgrp.stype = Ntide
	case used['T']:
		seqgrp.stype = DNA
	case used['U']:
		seqgrp.stype = RNA
	}
	return seqgrp.stype
}
