package squash

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/andrew-torda/homologs/pkg/seq"
	. "github.com/andrew-torda/homologs/pkg/seq/common"
)

const usageHead = `usage: squash [options] reference [input]
       squash -g [options] [input]
Remove the columns where the reference sequence has a gap. The reference
is a sequence number counting from 1, or text from its comment.
`

// findRef turns the reference argument into a sequence index. A number
// counts from 1. Anything else is looked for in the comments.
func findRef(seqgrp *seq.SeqGrp, ref string) (int, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil {
		if n < 1 || n > seqgrp.GetNSeq() {
			return -1, fmt.Errorf("sequence number %d out of range 1..%d", n, seqgrp.GetNSeq())
		}
		return n - 1, nil
	}
	ndx := seqgrp.FindNdx(ref)
	if ndx < 0 {
		return -1, fmt.Errorf("no sequence with %q in its name", ref)
	}
	return ndx, nil
}

// Squash reads an alignment from infile and writes it to w without the
// columns where ref has a gap. With an empty ref, only columns that are
// all gaps go. An empty infile means stdin.
func Squash(ref, infile string, w io.Writer, s_opts *seq.Options) error {
	seqgrp, err := seq.Readfile(infile, s_opts)
	if err != nil {
		return err
	}
	seqs := seqgrp.SeqSlc()
	if ref == "" {
		err = AllGapCols(seqs)
	} else {
		var ndx int
		if ndx, err = findRef(seqgrp, ref); err != nil {
			return err
		}
		err = Apply(seqs, RefMask(seqs[ndx].GetSeq()))
	}
	if err != nil {
		return err
	}
	return seq.Write(w, seqs, s_opts)
}

// MyMain parses argv, runs Squash and turns the result into an exit code.
func MyMain(argv []string, stdout, stderr io.Writer) int {
	var (
		allGap  bool
		outfile string
		s_opts  seq.Options
	)
	fs := flag.NewFlagSet("squash", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageHead)
		fs.PrintDefaults()
	}
	fs.BoolVar(&allGap, "g", false, "only remove columns that are all gaps, no reference")
	fs.StringVar(&outfile, "o", "", "output file, default stdout")
	fs.IntVar(&s_opts.LineWidth, "w", seq.DefaultLineWidth, "residues per output line")
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsageError
	}

	var ref, infile string
	args := fs.Args()
	if !allGap {
		if len(args) == 0 {
			fs.Usage()
			return ExitUsageError
		}
		ref, args = args[0], args[1:]
		if ref == "" {
			fmt.Fprintln(stderr, "squash: empty reference, use -g for all-gap columns")
			return ExitUsageError
		}
	}
	switch len(args) {
	case 0:
	case 1:
		infile = args[0]
	default:
		fs.Usage()
		return ExitUsageError
	}

	if outfile == "" {
		if err := Squash(ref, infile, stdout, &s_opts); err != nil {
			fmt.Fprintln(stderr, "squash:", err)
			return ExitFailure
		}
		return ExitSuccess
	}
	fp, err := os.Create(outfile)
	if err == nil {
		err = Squash(ref, infile, fp, &s_opts)
		if cerr := fp.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		fmt.Fprintln(stderr, "squash:", err)
		return ExitFailure
	}
	return ExitSuccess
}
