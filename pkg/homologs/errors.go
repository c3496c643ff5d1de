package homologs

import (
	"errors"

	"github.com/andrew-torda/homologs/pkg/seq"
)

// Sentinel kinds for a run.
var (
	ErrTooMany = errors.New("too many input sequences")
	ErrNoSeqs  = seq.ErrNoSeqs
	ErrUsage   = errors.New("usage")
)
