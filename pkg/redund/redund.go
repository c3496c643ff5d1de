// Package redund picks a non-redundant subset of the sequences in an
// alignment. Pairs are compared by percent identity over the columns
// where neither sequence has a gap. When a pair is too similar, the
// shorter sequence (fewer residues) is switched off.
package redund

import (
	"errors"
	"fmt"

	. "github.com/andrew-torda/homologs/pkg/seq/common"
	"github.com/andrew-torda/matrix"
)

// DefaultThreshold is the identity above which one of a pair is dropped.
const DefaultThreshold = 0.5

// Unset marks a pair in Result.Pid that was never compared, or that
// had no columns in common.
const Unset = -1

var ErrLength = errors.New("sequences are not aligned")

// Result is what Mark found.
type Result struct {
	Active []bool            // false means the sequence was switched off
	Pid    *matrix.FMatrix2d // Pid.Mat[i][j], i < j, identities computed
}

// PairIdentity returns the fraction of identical residues in the columns
// where neither a nor b has a gap. If there are no such columns, ok is
// false and the identity means nothing.
func PairIdentity(a, b []byte) (pid float64, ok bool) {
	var total, same int
	for i := range a {
		if a[i] == GapChar || b[i] == GapChar {
			continue
		}
		total++
		if a[i] == b[i] {
			same++
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(same) / float64(total), true
}

// nres counts the residues, ignoring gaps.
func nres(s []byte) int {
	n := 0
	for _, c := range s {
		if c != GapChar {
			n++
		}
	}
	return n
}

// checkLengths makes sure we really have an alignment.
func checkLengths(aligned [][]byte) error {
	for i := 1; i < len(aligned); i++ {
		if len(aligned[i]) != len(aligned[0]) {
			return fmt.Errorf("%w: sequence %d has %d columns, sequence 0 has %d",
				ErrLength, i, len(aligned[i]), len(aligned[0]))
		}
	}
	return nil
}

// Mark walks over every pair i < j where both are still active. If their
// identity is above thresh, the one with fewer residues is switched off.
// When lengths are equal, j goes. Once off, a sequence stays off and
// is not compared again.
// active may be nil, meaning everything starts active. Otherwise it must
// have one entry per sequence and is updated in place.
func Mark(aligned [][]byte, active []bool, thresh float64) (*Result, error) {
	n := len(aligned)
	if err := checkLengths(aligned); err != nil {
		return nil, err
	}
	if active == nil {
		active = make([]bool, n)
		for i := range active {
			active[i] = true
		}
	} else if len(active) != n {
		return nil, fmt.Errorf("%d active flags for %d sequences", len(active), n)
	}

	slen := make([]int, n)
	for i, s := range aligned {
		slen[i] = nres(s)
	}
	pid := matrix.NewFMatrix2d(n, n)
	for i := range pid.Mat {
		for j := range pid.Mat[i] {
			pid.Mat[i][j] = Unset
		}
	}

	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			if !active[i] || !active[j] {
				continue
			}
			p, ok := PairIdentity(aligned[i], aligned[j])
			if !ok { // no overlap, nothing to say about this pair
				continue
			}
			pid.Mat[i][j] = float32(p)
			if p > thresh {
				if slen[i] < slen[j] {
					active[i] = false
				} else {
					active[j] = false
				}
			}
		}
	}
	return &Result{Active: active, Pid: pid}, nil
}

// Filter runs Mark with the default threshold and returns the indices of
// the sequences that were switched off, in increasing order.
func Filter(aligned [][]byte) ([]int, error) {
	r, err := Mark(aligned, nil, DefaultThreshold)
	if err != nil {
		return nil, err
	}
	return r.Inactive(), nil
}

// Inactive lists the sequences that are switched off.
func (r *Result) Inactive() []int {
	var off []int
	for i, a := range r.Active {
		if !a {
			off = append(off, i)
		}
	}
	return off
}

// NActive counts the sequences that will be used.
func (r *Result) NActive() int {
	return len(r.Active) - len(r.Inactive())
}
