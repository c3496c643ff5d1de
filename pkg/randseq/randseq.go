// 31 July 2020

// Package randseq makes random protein sequences. They are only used
// for testing, so the generator is always seeded by the caller.
package randseq

import (
	"fmt"
	"io"
	"math/rand"
	"sync"

	. "github.com/andrew-torda/homologs/pkg/seq/common"
)

const (
	nPadWhite = 9 // For padding for adding whitespace to sequences
)

var letters = []byte{'A', 'C', 'D', 'E', 'F', 'G',
	'H', 'I', 'K', 'L', 'M', 'N', 'P', 'Q', 'R', 'S', 'T', 'V', 'W', 'Y'}

// RandSeqArgs is the set of arguments passed to the main function
type RandSeqArgs struct {
	Iseed   int64     // random number seed
	Wrtr    io.Writer // where we write to
	Cmmt    string    // Comment for the sequences
	Nseq    int       // number of sequences
	Len     int       // Length of sequences
	GapFrac float32   // Fraction of positions that are gaps
	White   bool      // Scatter blanks and newlines through the sequences
}

// getseq returns a byte slice with a random sequence in it
func getseq(seqlen int, gapFrac float32, rnd *rand.Rand) []byte {
	space := seqlen + (seqlen / nPadWhite) // about 10% rubbish white space
	ret := make([]byte, seqlen, space)
	l := len(letters)
	for i := 0; i < seqlen; i++ {
		if gapFrac > 0 && rnd.Float32() < gapFrac {
			ret[i] = GapChar
		} else {
			ret[i] = letters[rnd.Intn(l)]
		}
	}
	return ret
}

// addInner is used by addspace to add a space or newline
func addInner(s []byte, n int, c byte, rnd *rand.Rand) []byte {
	for i := 0; i < n; i++ {
		s = append(s, 0)
		pos := rnd.Intn(len(s))
		copy(s[pos+1:], s[pos:])
		s[pos] = c
	}
	return s
}

// addspace is given a byte array and adds white characters at random
// positions. We flip a coin. Heads we don't add a newline. Tails we make
// about 1/9 of the spaces newlines. A newline never goes first, so it
// cannot end up looking like an empty sequence.
func addspace(s []byte, rnd *rand.Rand) []byte {
	toAdd := cap(s) - len(s)
	nNL := 0
	if rnd.Intn(2) == 0 {
		nNL = toAdd / 9
	}
	s = addInner(s, toAdd-nNL, ' ', rnd)
	if len(s) == 0 {
		return s
	}
	return append(s[:1], addInner(s[1:], nNL, '\n', rnd)...)
}

// Seqs returns the random sequences without writing them anywhere.
func Seqs(args *RandSeqArgs) [][]byte {
	rnd := rand.New(rand.NewSource(args.Iseed))
	ret := make([][]byte, args.Nseq)
	for i := range ret {
		ret[i] = getseq(args.Len, args.GapFrac, rnd)
	}
	return ret
}

// writeseq takes a bytestring which is our sequence. It adds a comment
// and sends it out for writing. n is the number of the sequence, so the
// output has comment lines "> something 1, > something 2..."
func writeseq(sChan <-chan []byte, args *RandSeqArgs, wg *sync.WaitGroup, errp *error) {
	defer wg.Done()

	width := len(fmt.Sprintf("%d", args.Nseq))
	spacernd := rand.New(rand.NewSource(args.Iseed + 1))
	var i int
	for s := range sChan {
		i++
		if *errp != nil {
			continue // drain
		}
		if args.White {
			s = addspace(s, spacernd)
		}
		if _, err := fmt.Fprintf(args.Wrtr, "> %s %[2]*d\n%s\n", args.Cmmt, width, i, s); err != nil {
			*errp = err
		}
	}
}

// RandSeqMain writes random sequences to an io.Writer.
func RandSeqMain(args *RandSeqArgs) error {
	var wg sync.WaitGroup
	var err error
	sChan := make(chan []byte)
	wg.Add(1)
	go writeseq(sChan, args, &wg, &err)
	for _, s := range Seqs(args) {
		sChan <- s
	}
	close(sChan)
	wg.Wait()
	return err
}
