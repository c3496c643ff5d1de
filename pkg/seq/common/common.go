// 29 Apr 2020

package common

import (
	"fmt"
	"io"
	"os"
)

const (
	ExitSuccess = iota
	ExitFailure
	ExitUsageError
)

// ExitInterrupt is what a shell reports for a process stopped by ^C.
const ExitInterrupt = 130

const GapChar byte = '-' // a minus sign is always used for gaps

// Residue letters touched when cleaning up sequences that come back
// from a search. Selenocysteine (U) upsets the aligner, so it becomes
// the unknown residue.
const (
	SelenoRes  byte = 'U'
	UnknownRes byte = 'X'
)

// WrtTemp writes a string to a temporary file and returns
// the filename. It is used all over the place in testing.
// The caller removes the file.
func WrtTemp(s string) (string, error) {
	f_tmp, err := os.CreateTemp("", "_del_me_testing")
	if err != nil {
		return "", fmt.Errorf("tempfile fail: %w", err)
	}
	defer f_tmp.Close()

	if _, err := io.WriteString(f_tmp, s); err != nil {
		os.Remove(f_tmp.Name())
		return "", fmt.Errorf("writing string to temp file %v: %w", f_tmp.Name(), err)
	}
	return f_tmp.Name(), nil
}
