package mafft

import (
	"errors"
)

// Sentinel kinds for aligner errors.
var (
	ErrAlignerMissing = errors.New("aligner not found")
	ErrAlignerVersion = errors.New("aligner too old")
	ErrAlignerFailed  = errors.New("aligner failed")
)
