package blast

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
)

// Flavours of local program.
const (
	Blastall  = "blastall"  // legacy NCBI toolkit
	BlastPlus = "blastplus" // blastp from BLAST+
)

// maxTargets is how many database sequences the local program reports.
const maxTargets = 1000

// Local runs a search program on this machine.
type Local struct {
	Path   string // program, "blastall" or "blastp" if empty
	Flavor string // Blastall or BlastPlus
	DB     string // database name
	EValue float64
	Stderr io.Writer
}

func (l *Local) program() string {
	switch {
	case l.Path != "":
		return l.Path
	case l.Flavor == BlastPlus:
		return "blastp"
	}
	return "blastall"
}

// args builds the command line for a query file.
func (l *Local) args(qfile string) []string {
	e := strconv.FormatFloat(l.EValue, 'g', -1, 64)
	n := strconv.Itoa(maxTargets)
	if l.Flavor == BlastPlus {
		return []string{"-evalue", e, "-max_target_seqs", n, "-outfmt", "5",
			"-query", qfile, "-db", l.DB}
	}
	return []string{"-p", "blastp", "-e", e, "-b", n, "-m", "7",
		"-i", qfile, "-d", l.DB}
}

// writeQuery puts the query in a temporary fasta file with an empty name.
func writeQuery(query []byte) (string, error) {
	fp, err := os.CreateTemp("", "homologs_query")
	if err != nil {
		return "", fmt.Errorf("query temp file: %w", err)
	}
	_, err = fp.Write(append(append([]byte("> \n"), query...), '\n'))
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(fp.Name())
		return "", fmt.Errorf("query temp file: %w", err)
	}
	return fp.Name(), nil
}

// Run writes the query to a temporary file, runs the program and returns
// what it printed.
func (l *Local) Run(ctx context.Context, query []byte) ([]byte, error) {
	qfile, err := writeQuery(query)
	if err != nil {
		return nil, err
	}
	defer os.Remove(qfile)

	cmd := exec.CommandContext(ctx, l.program(), l.args(qfile)...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = l.Stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrSearchTool, l.program(), err)
	}
	return stdout.Bytes(), nil
}
