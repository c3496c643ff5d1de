// Package brokenio wraps an io.ReadCloser so that it misbehaves. It is
// for testing readers of things that arrive over a network or from
// another program: results cut short, bytes zeroed, an empty stream.
//
// Typical use:
//
//	rdr := brokenio.NewReader(io.NopCloser(src), 1)
//	rdr.SetTruncate(100)
//
// after which the consumer sees at most 100 bytes and then io.EOF.
package brokenio

import (
	"fmt"
	"io"
	"math/rand"
)

// Reader is modelled on the Readers in the standard library, but with
// settings controlling the frequency of errors. Probabilities are
// fractions, so 0.05 means failure in 5% of reads.
type Reader struct {
	rdrOrig      io.ReadCloser
	rnd          *rand.Rand
	probZeroFile float32 // chance of an empty stream
	probFail     float32 // chance that a read is damaged
	fracFail     float32 // fraction of a damaged read that is zeroed
	truncate     int     // stop after this many bytes, if > 0
	nCalled      int
	nByte        int
}

// NewReader wraps rIn. The seed makes the damage repeatable.
func NewReader(rIn io.ReadCloser, seed int64) *Reader {
	return &Reader{
		rdrOrig:  rIn,
		rnd:      rand.New(rand.NewSource(seed)),
		fracFail: 0.5,
	}
}

// SetFracFail sets the fraction of a damaged read which is wiped out.
func (r *Reader) SetFracFail(frac float32) { r.fracFail = frac }

// SetProbZeroFile sets the chance that the first read returns io.EOF
// with no data. It must be from 0 to 1 and is not checked.
func (r *Reader) SetProbZeroFile(prob float32) { r.probZeroFile = prob }

// SetProbFail sets the chance that a read is damaged.
func (r *Reader) SetProbFail(prob float32) { r.probFail = prob }

// SetTruncate makes the stream end after n bytes.
func (r *Reader) SetTruncate(n int) { r.truncate = n }

// NByte is the number of bytes handed out so far.
func (r *Reader) NByte() int { return r.nByte }

// trashSlice zeroes the tail of p. frac 0.3 wipes out the last 30 %.
func trashSlice(p []byte, frac float32) (int, error) {
	nkeep := int(float32(len(p)) * (1. - frac))
	if nkeep == len(p) {
		return nkeep, nil
	}
	clear(p[nkeep:])
	return nkeep, fmt.Errorf("randomly wiped out last %d of %d", len(p)-nkeep, len(p))
}

// Read passes on the wrapped reader's data, damaged as configured.
func (r *Reader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.nCalled == 0 && r.probZeroFile > 0 && r.rnd.Float32() < r.probZeroFile {
		r.nCalled++
		return 0, io.EOF
	}
	r.nCalled++
	if r.truncate > 0 {
		left := r.truncate - r.nByte
		if left <= 0 {
			return 0, io.EOF
		}
		if len(p) > left {
			p = p[:left]
		}
	}
	n, err = r.rdrOrig.Read(p)
	r.nByte += n
	if r.probFail > 0 && r.fracFail > 0 && r.rnd.Float32() < r.probFail {
		return trashSlice(p[:n], r.fracFail)
	}
	return n, err
}

// Close closes the wrapped reader.
func (r *Reader) Close() error { return r.rdrOrig.Close() }
