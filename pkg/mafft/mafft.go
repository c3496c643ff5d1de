// Package mafft runs the mafft multiple sequence aligner. Sequences go
// in through a temporary file and the alignment is read back from the
// program's standard output.
package mafft

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andrew-torda/homologs/pkg/seq"
)

// Mafft knows where the program is. The zero value looks for "mafft"
// in $PATH.
type Mafft struct {
	Path   string
	Stderr io.Writer // the program's chatter, discarded if nil
}

func (m *Mafft) path() string {
	if m.Path == "" {
		return "mafft"
	}
	return m.Path
}

// lookPath resolves the program or says it is missing.
func (m *Mafft) lookPath() (string, error) {
	p, err := exec.LookPath(m.path())
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrAlignerMissing, m.path(), err)
	}
	return p, nil
}

// Version asks the program for its help text and picks out the version.
// mafft exits non-zero after --help, so only a failure to start counts.
func (m *Mafft) Version(ctx context.Context) (string, error) {
	p, err := m.lookPath()
	if err != nil {
		return "", err
	}
	cmd := exec.CommandContext(ctx, p, "--help")
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s: %w", ErrAlignerFailed, p, err)
		}
	}
	return parseVersion(out), nil
}

// CheckVersion fails with ErrAlignerVersion if the installed program is
// older than minVer.
func (m *Mafft) CheckVersion(ctx context.Context, minVer string) error {
	v, err := m.Version(ctx)
	if err != nil {
		return err
	}
	if CompareVersions(v, minVer) < 0 {
		return fmt.Errorf("%w: have %s, need %s or newer", ErrAlignerVersion, v, minVer)
	}
	return nil
}

// Align runs the program with opts on the sequences in and returns the
// aligned sequences in the order the program wrote them. The temporary
// input file is removed on every path out.
func (m *Mafft) Align(ctx context.Context, in []seq.Seq, opts []string) ([]seq.Seq, error) {
	p, err := m.lookPath()
	if err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp("", "homologs_mafft")
	if err != nil {
		return nil, fmt.Errorf("aligner temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	infile := filepath.Join(dir, "in.fa")
	s_opts := &seq.Options{RmvGapsWrt: true}
	if err := seq.WriteToF(infile, in, s_opts); err != nil {
		return nil, err
	}

	args := append(append([]string{}, opts...), infile)
	cmd := exec.CommandContext(ctx, p, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = m.Stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s %s: %w", ErrAlignerFailed, p, strings.Join(opts, " "), err)
	}

	seqgrp := new(seq.SeqGrp)
	if err := seq.ReadFasta(&stdout, seqgrp, &seq.Options{}); err != nil {
		return nil, fmt.Errorf("%w: reading alignment: %w", ErrAlignerFailed, err)
	}
	return seqgrp.SeqSlc(), nil
}

// PrelimOpts are the options for the first, rough alignment of the
// input. With entire set, the whole sequences are aligned quickly.
// Otherwise only the conserved core is aligned carefully, using the
// given identity threshold and window size.
func PrelimOpts(entire bool, corethr float64, corewin int) []string {
	if entire {
		return []string{"--maxiterate", "0", "--retree", "2"}
	}
	return []string{
		"--maxiterate", "1000", "--localpair",
		"--core", "--coreext",
		"--corethr", strconv.FormatFloat(corethr, 'g', -1, 64),
		"--corewin", strconv.Itoa(corewin),
	}
}

// FinalOpts are the options for the alignment of inputs plus hits.
// Whatever the user asked for is appended, so it wins over ours.
func FinalOpts(extra string) []string {
	o := []string{"--op", "1.53", "--ep", "0.123", "--localpair", "--maxiterate", "1000", "--reorder"}
	return append(o, strings.Fields(extra)...)
}

// SeedFiles finds the files named after "--seed" in the user's options.
// Their sequences join the input.
func SeedFiles(extra string) []string {
	var files []string
	f := strings.Fields(extra)
	for i := 0; i < len(f)-1; i++ {
		if f[i] == "--seed" {
			files = append(files, f[i+1])
			i++
		}
	}
	return files
}
