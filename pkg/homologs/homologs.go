// 16 Oct 2026
// homologs takes a few related protein sequences, finds more members of
// the family with similarity searches and aligns the lot. Only one of a
// pair of very similar inputs is used as a query. Hits from all the
// queries are merged, keeping the best scoring copy of each, and a random
// sample of them joins the final alignment.

package homologs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/andrew-torda/homologs/pkg/blast"
	"github.com/andrew-torda/homologs/pkg/hits"
	"github.com/andrew-torda/homologs/pkg/logger"
	"github.com/andrew-torda/homologs/pkg/mafft"
	"github.com/andrew-torda/homologs/pkg/metrics"
	"github.com/andrew-torda/homologs/pkg/numseq"
	"github.com/andrew-torda/homologs/pkg/redund"
	"github.com/andrew-torda/homologs/pkg/seq"
	"github.com/andrew-torda/homologs/pkg/squash"
)

// Names of sampled hits carry AddedMarker until the final alignment is
// written. In output it becomes OutMarker.
const (
	AddedMarker = "_addedbymaffte_"
	OutMarker   = "_ho_"
)

// MaxSeqs is one more than the number of input sequences we accept.
const MaxSeqs = 100

// Defaults for the command line.
const (
	DefaultNAdd    = hits.DefaultCap
	DefaultEValue  = 1e-10
	DefaultCoreWin = 50
	DefaultCoreThr = 0.3
)

// CmdFlag holds what came in on the command line.
type CmdFlag struct {
	InFile   string
	NAdd     int     // maximum hits to add
	EValue   float64 // search cutoff
	MafftOpt string  // extra options for the final alignment
	Local    bool    // search locally rather than at NCBI
	Full     bool    // keep the hits in the output
	Strip    bool    // drop the hits from the output. Wins over Full.
	Entire   bool    // rough alignment of whole sequences, not the core
	CoreWin  int
	CoreThr  float64
	Seed     int64
	Verbose  bool
}

// NewCmdFlag gives the defaults.
func NewCmdFlag() *CmdFlag {
	return &CmdFlag{
		NAdd:    DefaultNAdd,
		EValue:  DefaultEValue,
		CoreWin: DefaultCoreWin,
		CoreThr: DefaultCoreThr,
	}
}

// keepHits says whether the hits go into the output.
func (f *CmdFlag) keepHits() bool { return f.Full && !f.Strip }

// Aligner makes a multiple sequence alignment.
type Aligner interface {
	Align(ctx context.Context, in []seq.Seq, opts []string) ([]seq.Seq, error)
}

// versionChecker is an Aligner which can say if it is new enough.
type versionChecker interface {
	CheckVersion(ctx context.Context, minVer string) error
}

// Env holds the collaborators of a run. Aligner, Runner and Out are
// required.
type Env struct {
	Aligner    Aligner
	Runner     blast.Runner
	Out        io.Writer
	Log        logger.Logger    // discarded if nil
	Metrics    *metrics.Manager // may be nil
	MinVersion string           // oldest acceptable aligner, if it can tell us
	Threshold  float64          // identity above which a query is redundant, 0 means redund.DefaultThreshold
}

// run carries what is shared between the stages.
type run struct {
	flags  *CmdFlag
	env    *Env
	log    logger.Logger
	met    *metrics.Manager
	thresh float64
}

// spool copies fname into dir unless it is a regular file. Input has to
// be counted and then read, and a pipe only gives its contents once.
func spool(fname, dir string) (string, error) {
	fi, err := os.Stat(fname)
	if err != nil {
		return "", err
	}
	if fi.Mode().IsRegular() {
		return fname, nil
	}
	src, err := os.Open(fname)
	if err != nil {
		return "", err
	}
	defer src.Close()
	dst, err := os.CreateTemp(dir, "spool*.fa")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("copying %s: %w", fname, err)
	}
	return dst.Name(), dst.Close()
}

// readInput reads the input file and any seed files named in the
// aligner options. The number of sequences is checked before anything
// is parsed.
func (r *run) readInput(ctx context.Context) ([]seq.Seq, error) {
	files := append([]string{r.flags.InFile}, mafft.SeedFiles(r.flags.MafftOpt)...)
	tmpdir, err := os.MkdirTemp("", "homologs")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpdir)
	nseq := 0
	for i, f := range files {
		if files[i], err = spool(f, tmpdir); err != nil {
			return nil, err
		}
		n, err := numseq.Count(files[i])
		if err != nil {
			return nil, err
		}
		nseq += n
	}
	r.met.SetInputSeqs(nseq)
	switch {
	case nseq >= MaxSeqs:
		return nil, fmt.Errorf("%w: %d, must be less than %d", ErrTooMany, nseq, MaxSeqs)
	case nseq == 0:
		return nil, fmt.Errorf("%s: %w", r.flags.InFile, ErrNoSeqs)
	}
	s_opts := &seq.Options{DiffLenSeq: true}
	all := new(seq.SeqGrp)
	for _, f := range files {
		seqgrp, err := seq.Readfile(f, s_opts)
		if err != nil {
			return nil, err
		}
		all.Append(seqgrp.SeqSlc()...)
	}
	r.checkType(ctx, all.SeqSlc())
	return all.SeqSlc(), nil
}

// checkType warns if the input does not look like protein, since the
// searches are protein searches. The input itself is not touched.
func (r *run) checkType(ctx context.Context, input []seq.Seq) {
	chk := new(seq.SeqGrp)
	for i := range input {
		chk.Append(input[i].Copy())
	}
	if err := chk.Upper(); err != nil {
		r.log.Warn(ctx, "cannot tell sequence type", logger.Error(err))
		return
	}
	if st := chk.GetType(); st != seq.Protein {
		r.log.Warn(ctx, "input does not look like protein", logger.String("type", st.String()))
	}
}

// prelim makes the rough alignment used to pick queries. A single
// sequence is its own alignment.
func (r *run) prelim(ctx context.Context, input []seq.Seq) ([]seq.Seq, error) {
	if len(input) == 1 {
		return []seq.Seq{input[0].Copy()}, nil
	}
	r.log.Info(ctx, "performing preliminary alignment")
	defer r.met.Since("prelim_align", time.Now())
	opts := mafft.PrelimOpts(r.flags.Entire, r.flags.CoreThr, r.flags.CoreWin)
	aligned, err := r.env.Aligner.Align(ctx, input, opts)
	if err != nil {
		return nil, fmt.Errorf("preliminary alignment: %w", err)
	}
	if len(aligned) != len(input) {
		return nil, fmt.Errorf("preliminary alignment: %d sequences in, %d out",
			len(input), len(aligned))
	}
	return aligned, nil
}

// pickQueries runs the redundancy filter over the rough alignment.
func (r *run) pickQueries(ctx context.Context, aligned []seq.Seq) ([]bool, error) {
	rows := make([][]byte, len(aligned))
	for i, s := range aligned {
		rows[i] = s.GetSeq()
	}
	res, err := redund.Mark(rows, nil, r.thresh)
	if err != nil {
		return nil, fmt.Errorf("choosing queries: %w", err)
	}
	if r.log.Enabled(ctx, slog.LevelDebug) {
		for i := range rows {
			for j := i + 1; j < len(rows); j++ {
				if pid := res.Pid.Mat[i][j]; pid != redund.Unset {
					r.log.Debug(ctx, "pair identity", logger.Int("i", i),
						logger.Int("j", j), logger.Float64("pid", float64(pid)))
				}
			}
		}
	}
	r.met.RecordSkipped(len(rows) - res.NActive())
	return res.Active, nil
}

// search sends one query and offers its hits to the collector. A failed
// search is logged and gives no hits.
func (r *run) search(ctx context.Context, query []byte, coll *hits.Collector) error {
	r.met.RecordQuery()
	start := time.Now()
	found, hitErrs, err := blast.Search(ctx, r.env.Runner, query)
	r.met.Since("search", start)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.met.RecordSearchFailure()
		r.log.Warn(ctx, "search failed, no hits from this query", logger.Error(err))
		return nil
	}
	for _, e := range hitErrs {
		r.log.Warn(ctx, "skipping hit", logger.Error(e))
	}
	for _, h := range found {
		r.met.RecordHit(coll.Add(h).String())
	}
	r.log.Info(ctx, "search done", logger.Int("hits", len(found)),
		logger.Int("collected", coll.Len()))
	return nil
}

// finish drops or renames the hits in the final alignment and takes out
// columns with nothing but gaps.
func (r *run) finish(final []seq.Seq) ([]seq.Seq, error) {
	keep := r.flags.keepHits()
	var out []seq.Seq
	for _, s := range final {
		cmmt := s.GetCmmt()
		if strings.Contains(cmmt, AddedMarker) {
			if !keep {
				continue
			}
			s.SetCmmt(strings.Replace(cmmt, AddedMarker, OutMarker, 1))
		}
		out = append(out, s)
	}
	if err := squash.AllGapCols(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Run does the whole job and writes the alignment to env.Out.
func Run(ctx context.Context, flags *CmdFlag, env *Env) error {
	r := &run{flags: flags, env: env, log: env.Log, met: env.Metrics, thresh: env.Threshold}
	if r.log == nil {
		r.log = logger.Discard()
	}
	if r.thresh == 0 {
		r.thresh = redund.DefaultThreshold
	}
	if vc, ok := env.Aligner.(versionChecker); ok && env.MinVersion != "" {
		if err := vc.CheckVersion(ctx, env.MinVersion); err != nil {
			return err
		}
	}

	input, err := r.readInput(ctx)
	if err != nil {
		return err
	}
	aligned, err := r.prelim(ctx, input)
	if err != nil {
		return err
	}
	active, err := r.pickQueries(ctx, aligned)
	if err != nil {
		return err
	}

	r.log.Info(ctx, "searching")
	coll := hits.NewCollector()
	pool := make([]seq.Seq, 0, len(input)+flags.NAdd)
	nin := len(input)
	for i := range input {
		pool = append(pool, input[i].Copy())
		qlog := r.log.With(logger.String("query", fmt.Sprintf("%d/%d", i+1, nin)),
			logger.String("name", aligned[i].GetCmmt()))
		if !active[i] {
			qlog.Info(ctx, "skip, similar to another query")
			continue
		}
		qlog.Info(ctx, "query")
		qr := *r
		qr.log = qlog
		if err := qr.search(ctx, aligned[i].Ungapped(), coll); err != nil {
			return err
		}
	}

	rnd := rand.New(rand.NewSource(flags.Seed))
	sampled := coll.Sample(rnd, flags.NAdd)
	r.met.SetSampled(len(sampled))
	for _, h := range sampled {
		pool = append(pool, seq.NewSeq(AddedMarker+h.ID, []byte(h.Seq)))
	}

	r.log.Info(ctx, "performing alignment", logger.Int("nseq", len(pool)),
		logger.Int("added", len(sampled)))
	start := time.Now()
	final, err := env.Aligner.Align(ctx, pool, mafft.FinalOpts(flags.MafftOpt))
	r.met.Since("final_align", start)
	if err != nil {
		return fmt.Errorf("final alignment: %w", err)
	}
	out, err := r.finish(final)
	if err != nil {
		return err
	}
	return seq.Write(env.Out, out, &seq.Options{LineWidth: seq.DefaultLineWidth})
}
