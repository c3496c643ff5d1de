// Package blast runs similarity searches, either with a local program or
// with the NCBI web service, and reads the hits out of the XML results.
package blast

import (
	"bytes"
	"context"

	"github.com/andrew-torda/homologs/pkg/hits"
)

// Runner sends one query and gives back the raw XML result.
type Runner interface {
	Run(ctx context.Context, query []byte) ([]byte, error)
}

// RunnerFunc lets an ordinary function be a Runner.
type RunnerFunc func(ctx context.Context, query []byte) ([]byte, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, query []byte) ([]byte, error) {
	return f(ctx, query)
}

// Search runs a query and parses the result. Per-hit problems come back
// in the error slice and do not stop the search.
func Search(ctx context.Context, r Runner, query []byte) ([]hits.Hit, []error, error) {
	raw, err := r.Run(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return Parse(bytes.NewReader(raw))
}
