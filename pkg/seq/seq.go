// 20 Dec 2017

// Package seq provides functions for sequences,
// which usually begin their lives in fasta format. It can
// read and write them.
//
// A sequence may be aligned (it carries gap characters and has the same
// number of columns as its neighbours) or unaligned. The same type is
// used for both. Ungapped() gives the unaligned view of an aligned one.
package seq

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	. "github.com/andrew-torda/homologs/pkg/seq/common"
)

// Seq is a comment (the fasta name line without the ">") and the
// residues.
type Seq struct {
	cmmt string
	seq  []byte
}

// A marker to say what type of sequence we have, protein, DNA, ...
type SeqType byte

const (
	Unchecked SeqType = iota // Has not been looked at yet
	Unknown                  // Really unknown, not a protein or nucleotide
	Protein                  //
	DNA                      //
	RNA                      //
	Ntide                    // Nucleotide
)

func (st SeqType) String() string {
	switch st {
	case Unchecked:
		return "unchecked"
	case Protein:
		return "protein"
	case DNA:
		return "DNA"
	case RNA:
		return "RNA"
	case Ntide:
		return "nucleotide"
	}
	return "unknown"
}

// We only read ascii characters, so anything bigger than this is not
// valid.
const (
	MaxSym uint8 = 127
)

// DefaultLineWidth is the number of residues per line on output.
const DefaultLineWidth = 60

// Options contains all the choices passed in from the caller.
type Options struct {
	DiffLenSeq bool // false, unless we expect sequences to be different lengths
	RmvGapsRd  bool // Remove gaps upon reading
	RmvGapsWrt bool // Remove gaps on output
	LineWidth  int  // residues per output line, 0 means DefaultLineWidth
}

// Constants
const cmmt_char byte = '>' // and this introduces comments in fasta format

// SeqGrp is a group of sequences, with some additional information
// such as what type (protein, nucleotide) and the symbols
// that have been used.
type SeqGrp struct {
	symUsed  [MaxSym]bool // which symbols are actually used
	seqs     []Seq
	stype    SeqType
	usedKnwn bool // Do we know which symbols are used ?
}

// NewSeq makes a sequence from a comment and residues. The byte slice
// is not copied.
func NewSeq(cmmt string, s []byte) Seq { return Seq{cmmt: cmmt, seq: s} }

// Function GetSeq returns the sequence as the original byte slice
func (s Seq) GetSeq() []byte { return s.seq }

// Function GetCmmt returns the comment, without the leading ">"
func (s Seq) GetCmmt() string { return s.cmmt }

// Function Len
func (s Seq) Len() int { return len(s.seq) }

// SetSeq will replace whatever was the sequence with a new one
func (s *Seq) SetSeq(t []byte) { s.seq = t }

// SetCmmt replaces the comment.
func (s *Seq) SetCmmt(c string) { s.cmmt = c }

// Empty returns true if a sequence has no residues.
func (s Seq) Empty() bool { return len(s.seq) == 0 }

// NRes is the number of residues, not counting gaps.
func (s Seq) NRes() int {
	return len(s.seq) - bytes.Count(s.seq, []byte{GapChar})
}

// Ungapped returns a new slice with the gap characters removed. The
// original is not touched.
func (s Seq) Ungapped() []byte {
	t := make([]byte, 0, s.NRes())
	for _, c := range s.seq {
		if c != GapChar {
			t = append(t, c)
		}
	}
	return t
}

// trimStr trims a string to n bytes if it is longer
func trimStr(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Upper changes a sequence to upper case, in place.
// It only works with bytes, not runes.
// It can return an error if it encounters a symbol it does
// not like (value higher than 128).
func (seq *Seq) Upper() error {
	const diff = 'a' - 'A'
	const symerr = "bad sym \"%c\" at position %d starting \"%s\""
	s := seq.GetSeq()
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= MaxSym {
			return fmt.Errorf(symerr, c, i, trimStr(seq.GetCmmt(), 40))
		}
		if 'a' <= c && c <= 'z' {
			s[i] -= diff
		}
	}
	return nil
}

// Copy gives a sequence with its own copy of the residues.
func (s *Seq) Copy() Seq {
	return Seq{cmmt: s.cmmt, seq: bytes.Clone(s.seq)}
}

// String returns a sequence, with its comment at the start as
// a single string
func (s Seq) String() (t string) {
	return fmt.Sprintf("%c%s\n%s", cmmt_char, s.GetCmmt(), s.GetSeq())
}

// GetNSeq returns the number of sequences
func (seqgrp *SeqGrp) GetNSeq() int { return len(seqgrp.seqs) }

// SeqSlc return the slice of sequences
func (seqgrp *SeqGrp) SeqSlc() []Seq { return seqgrp.seqs }

// Append adds sequences to the end of the group. Anything we had
// worked out about symbols is forgotten.
func (seqgrp *SeqGrp) Append(s ...Seq) {
	seqgrp.seqs = append(seqgrp.seqs, s...)
	seqgrp.usedKnwn = false
	seqgrp.stype = Unchecked
}

// Upper uppercases all the members of a group of sequences.
func (seqgrp *SeqGrp) Upper() error {
	for i := range seqgrp.seqs {
		if err := seqgrp.seqs[i].Upper(); err != nil {
			return err
		}
	}
	seqgrp.usedKnwn = false
	seqgrp.stype = Unchecked
	return nil
}

// CheckLengths should only be called if we are keeping
// gaps. Then we imagine all the sequences are aligned, so they
// must be the same length.
func CheckLengths(seq_set []Seq) error {
	const msg = "sequence lengths are not the same. First sequence length %d, " +
		"but sequence %d length: %d. Sequence starts \"%s\""
	if len(seq_set) == 0 {
		return nil
	}
	iwant := len(seq_set[0].GetSeq())
	for i := 1; i < len(seq_set); i++ {
		if ilen := len(seq_set[i].GetSeq()); ilen != iwant {
			return fmt.Errorf(msg, iwant, i, ilen, trimStr(seq_set[i].GetCmmt(), 40))
		}
	}
	return nil
}

// Readfile takes a filename and reads sequences from it.
// each in turn. It returns a SeqGrp and error.
// An empty filename means standard input.
func Readfile(fname string, s_opts *Options) (*SeqGrp, error) {
	var seqgrp = new(SeqGrp)
	var err error
	var fp io.ReadCloser // don't use a file. It could be stdin.

	if fname != "" {
		if fp, err = os.Open(fname); err != nil {
			return nil, err
		}
	} else {
		fp = io.NopCloser(os.Stdin)
	}

	defer fp.Close()

	if err := ReadFasta(fp, seqgrp, s_opts); err != nil {
		return seqgrp, fmt.Errorf("%s: %w", fname, err)
	}
	return seqgrp, nil
}

// Write puts sequences on a writer in fasta format, wrapped at
// s_opts.LineWidth. Empty sequences are skipped.
func Write(w io.Writer, seq_set []Seq, s_opts *Options) error {
	c_per_line := s_opts.LineWidth
	if c_per_line <= 0 {
		c_per_line = DefaultLineWidth
	}
	bw := bufio.NewWriter(w)
	var t []byte
	for _, seq := range seq_set {
		if seq.Empty() {
			continue
		}
		bw.WriteByte(cmmt_char)
		bw.WriteString(seq.GetCmmt())
		bw.WriteByte('\n')

		s := seq.GetSeq()
		if s_opts.RmvGapsWrt { // we have to remove gap characters on output
			t = t[:0]
			for _, c := range s {
				if c != GapChar {
					t = append(t, c)
				}
			}
			s = t
		}
		for ; len(s) > c_per_line; s = s[c_per_line:] {
			bw.Write(s[:c_per_line])
			bw.WriteByte('\n')
		}
		bw.Write(s)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteToF takes a filename and a slice of sequences.
// It writes the sequences to the file, or to standard output if
// the name is empty.
func WriteToF(outseq_fname string, seq_set []Seq, s_opts *Options) (err error) {
	if outseq_fname == "" {
		return Write(os.Stdout, seq_set, s_opts)
	}
	fp, err := os.Create(outseq_fname)
	if err != nil {
		return fmt.Errorf("creating output sequence file: %w", err)
	}
	if err = Write(fp, seq_set, s_opts); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// FindNdx Returns the index of the sequence containing a string.
// Numbering starts from zero. We remove any ">", space or tab at the start.
func (seqgrp *SeqGrp) FindNdx(s string) int {
	s = strings.TrimLeft(s, " >	")

	for i, seq := range seqgrp.seqs {
		if strings.Contains(seq.GetCmmt(), s) {
			return i
		}
	}
	return -1
}

// Str2SeqGrp takes some strings and returns them as a seqgrp.
// sIn is a slice of strings which are the sequences.
// prefix is an optional argument. Sequences need names/comments. If
// prefix is not given, sequences will be called "s0", "s1", ...
func Str2SeqGrp(sIn []string, prefix ...string) *SeqGrp {
	var base string
	seqgrp := new(SeqGrp)
	if prefix == nil {
		base = "s"
	} else {
		base = prefix[0]
	}
	for i, s := range sIn {
		f := Seq{cmmt: fmt.Sprint(base, i), seq: []byte(s)}
		seqgrp.seqs = append(seqgrp.seqs, f)
	}
	return seqgrp
}
