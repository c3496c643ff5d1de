// Reader for fasta format files.

package seq

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"

	. "github.com/andrew-torda/homologs/pkg/seq/common"
	"github.com/andrew-torda/homologs/pkg/white"
)

const (
	NL       = '\n'
	cmmtChar = '>'
)

const defaultReadSize = 64 * 1024

var rdsize int = defaultReadSize

// setFastaRdSize is only used during testing, to catch mistakes at the
// end of buffers.
func setFastaRdSize(i int) {
	if i < 16 { // bufio will not go below this
		panic("setFastaRdSize given buffer length below 16")
	}
	rdsize = i
}

var ErrNoSeqs = errors.New("no sequences found")

// lexer holds the partially built sequence while we walk over lines.
type lexer struct {
	seqgrp *SeqGrp
	s_opts *Options
	cmmt   string // comment of the sequence being read
	seq    []byte // partial sequence
	inSeq  bool   // have we seen a comment line yet ?
	err    error
}

// flush finishes the current sequence and puts it in the group.
func (l *lexer) flush() {
	if !l.inSeq {
		return
	}
	if len(l.seq) == 0 {
		l.err = errors.New("zero length sequence after " + trimStr(l.cmmt, 40))
		return
	}
	l.seqgrp.seqs = append(l.seqgrp.seqs, Seq{cmmt: l.cmmt, seq: l.seq})
	l.cmmt = ""
	l.seq = nil
}

// line handles one line, without its newline.
func (l *lexer) line(b []byte) {
	if len(b) > 0 && b[0] == cmmtChar {
		l.flush()
		l.cmmt = strings.TrimRight(string(b[1:]), " \t\r")
		l.inSeq = true
		return
	}
	if !l.inSeq { // Rubbish before the first comment is ignored
		return
	}
	white.Remove(&b)
	if l.s_opts.RmvGapsRd {
		b = bytes.ReplaceAll(b, []byte{GapChar}, nil)
	}
	l.seq = append(l.seq, b...)
}

// ReadFasta reads fasta formatted files.
// Sequences are appended to seqgrp. Unless s_opts.DiffLenSeq is set, they
// must all end up the same length.
func ReadFasta(rdr io.Reader, seqgrp *SeqGrp, s_opts *Options) error {
	l := lexer{seqgrp: seqgrp, s_opts: s_opts}
	br := bufio.NewReaderSize(rdr, rdsize)
	for l.err == nil {
		b, err := br.ReadSlice(NL)
		if err == bufio.ErrBufferFull { // Very long line. Take a copy
			b = bytes.Clone(b) //            and keep reading.
			for err == bufio.ErrBufferFull {
				var more []byte
				more, err = br.ReadSlice(NL)
				b = append(b, more...)
			}
		}
		if len(b) > 0 {
			l.line(bytes.TrimSuffix(b, []byte{NL}))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	if l.err != nil {
		return l.err
	}
	l.flush()
	if l.err != nil {
		return l.err
	}
	if seqgrp.GetNSeq() == 0 {
		return ErrNoSeqs
	}
	seqgrp.usedKnwn = false
	seqgrp.stype = Unchecked
	if !s_opts.DiffLenSeq {
		return CheckLengths(seqgrp.seqs)
	}
	return nil
}
