package homologs_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/andrew-torda/homologs/pkg/homologs"
	"github.com/andrew-torda/homologs/pkg/logger"
	"github.com/andrew-torda/homologs/pkg/metrics"
	"github.com/andrew-torda/homologs/pkg/randseq"
	"github.com/andrew-torda/homologs/pkg/seq"
	. "github.com/andrew-torda/homologs/pkg/seq/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// padAligner pretends to align by stripping gaps and padding every
// sequence on the right with gaps, a few columns past the longest one.
type padAligner struct {
	calls   [][]string
	version error
}

func (p *padAligner) Align(_ context.Context, in []seq.Seq, opts []string) ([]seq.Seq, error) {
	p.calls = append(p.calls, opts)
	longest := 0
	for _, s := range in {
		longest = max(longest, s.NRes())
	}
	out := make([]seq.Seq, len(in))
	for i, s := range in {
		b := s.Ungapped()
		b = append(b, bytes.Repeat([]byte{GapChar}, longest+3-len(b))...)
		out[i] = seq.NewSeq(s.GetCmmt(), b)
	}
	return out, nil
}

func (p *padAligner) CheckVersion(_ context.Context, _ string) error { return p.version }

// cannedRunner answers each query with hits looked up by query.
type cannedRunner struct {
	answers map[string]string
	queries []string
	err     error
}

func (c *cannedRunner) Run(_ context.Context, query []byte) ([]byte, error) {
	c.queries = append(c.queries, string(query))
	if c.err != nil {
		return nil, c.err
	}
	return []byte(c.answers[string(query)]), nil
}

func hitXML(id string, score float64, hseq string) string {
	return fmt.Sprintf(`<Hit><Hit_id>%s</Hit_id><Hit_hsps><Hsp>
<Hsp_bit-score>%g</Hsp_bit-score><Hsp_hseq>%s</Hsp_hseq></Hsp></Hit_hsps></Hit>`, id, score, hseq)
}

func docXML(hitElems ...string) string {
	return `<?xml version="1.0"?><BlastOutput><BlastOutput_iterations><Iteration><Iteration_hits>` +
		strings.Join(hitElems, "\n") +
		`</Iteration_hits></Iteration></BlastOutput_iterations></BlastOutput>`
}

const threeSeqs = `> s1
ACDEFGHIKL
> s2
ACDEFGHIKM
> s3
WWYYWWYYPP
`

func newRunner() *cannedRunner {
	return &cannedRunner{answers: map[string]string{
		"ACDEFGHIKL": docXML(hitXML("hitA", 50, "ACDEFGHI"), hitXML("hitB", 60, "ACD-EFG")),
		"WWYYWWYYPP": docXML(hitXML("hitB", 70, "WWYY-WW"), hitXML("hitC", 10, "WUYWW")),
	}}
}

func writeTemp(t *testing.T, s string) string {
	t.Helper()
	fname, err := WrtTemp(s)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(fname) })
	return fname
}

func readOut(t *testing.T, b []byte) []seq.Seq {
	t.Helper()
	seqgrp := new(seq.SeqGrp)
	if err := seq.ReadFasta(bytes.NewReader(b), seqgrp, &seq.Options{}); err != nil {
		t.Fatal(err, string(b))
	}
	return seqgrp.SeqSlc()
}

func TestRunNoHitsInOutput(t *testing.T) {
	flags := homologs.NewCmdFlag()
	flags.InFile = writeTemp(t, threeSeqs)
	flags.NAdd = 2
	flags.Local = true
	aligner, runner := &padAligner{}, newRunner()
	var out bytes.Buffer
	met := metrics.NewManager()
	env := &homologs.Env{Aligner: aligner, Runner: runner, Out: &out, Metrics: met, MinVersion: "5.58"}
	if err := homologs.Run(context.Background(), flags, env); err != nil {
		t.Fatal(err)
	}
	if len(runner.queries) != 2 {
		t.Fatal("s2 is redundant with s1, wanted 2 queries, got", runner.queries)
	}
	if len(aligner.calls) != 2 {
		t.Fatal("wanted a preliminary and a final alignment, got", len(aligner.calls))
	}
	if aligner.calls[1][0] != "--op" {
		t.Fatal("final alignment options", aligner.calls[1])
	}
	got := readOut(t, out.Bytes())
	if len(got) != 3 {
		t.Fatal("wanted only the 3 inputs, got", len(got))
	}
	for i, name := range []string{" s1", " s2", " s3"} {
		if got[i].GetCmmt() != name {
			t.Errorf("sequence %d is %q", i, got[i].GetCmmt())
		}
		if got[i].Len() != 10 {
			t.Errorf("all gap columns left in, length %d", got[i].Len())
		}
	}
	const want = `
# HELP homologs_queries_total Similarity searches started.
# TYPE homologs_queries_total counter
homologs_queries_total 2
`
	if err := testutil.GatherAndCompare(met.Registry(), strings.NewReader(want),
		"homologs_queries_total"); err != nil {
		t.Error(err)
	}
}

func TestRunHitsInOutput(t *testing.T) {
	flags := homologs.NewCmdFlag()
	flags.InFile = writeTemp(t, threeSeqs)
	flags.NAdd = 2
	flags.Full = true
	var out bytes.Buffer
	env := &homologs.Env{Aligner: &padAligner{}, Runner: newRunner(), Out: &out}
	if err := homologs.Run(context.Background(), flags, env); err != nil {
		t.Fatal(err)
	}
	got := readOut(t, out.Bytes())
	if len(got) != 5 {
		t.Fatal("wanted 3 inputs and 2 hits, got", len(got))
	}
	for _, s := range got[3:] {
		c := s.GetCmmt()
		if !strings.HasPrefix(c, homologs.OutMarker) || strings.Contains(c, homologs.AddedMarker) {
			t.Errorf("hit not renamed: %q", c)
		}
		switch c {
		case "_ho_hitA":
		case "_ho_hitB":
			if !strings.HasPrefix(string(s.GetSeq()), "WWYYWW") {
				t.Error("hitB should be the better scoring copy, got", string(s.GetSeq()))
			}
		case "_ho_hitC":
			if !strings.HasPrefix(string(s.GetSeq()), "WXYWW") {
				t.Error("hitC should have U changed to X, got", string(s.GetSeq()))
			}
		default:
			t.Error("unexpected hit", c)
		}
	}
	if got[0].Len() != 10 {
		t.Error("all gap columns left in, length", got[0].Len())
	}
}

func TestStripWins(t *testing.T) {
	flags := homologs.NewCmdFlag()
	flags.InFile = writeTemp(t, threeSeqs)
	flags.Full, flags.Strip = true, true
	var out bytes.Buffer
	env := &homologs.Env{Aligner: &padAligner{}, Runner: newRunner(), Out: &out}
	if err := homologs.Run(context.Background(), flags, env); err != nil {
		t.Fatal(err)
	}
	if got := readOut(t, out.Bytes()); len(got) != 3 {
		t.Fatal("-s should drop hits, got", len(got))
	}
}

func TestSameSeedSameOutput(t *testing.T) {
	var outs [2]bytes.Buffer
	for i := range outs {
		flags := homologs.NewCmdFlag()
		flags.InFile = writeTemp(t, threeSeqs)
		flags.NAdd = 2
		flags.Full = true
		flags.Seed = 17
		env := &homologs.Env{Aligner: &padAligner{}, Runner: newRunner(), Out: &outs[i]}
		if err := homologs.Run(context.Background(), flags, env); err != nil {
			t.Fatal(err)
		}
	}
	if outs[0].String() != outs[1].String() {
		t.Fatal("same seed gave different output")
	}
}

func TestSingleSequence(t *testing.T) {
	flags := homologs.NewCmdFlag()
	flags.InFile = writeTemp(t, "> only\nAC-DEFGH\n")
	aligner, runner := &padAligner{}, newRunner()
	var out bytes.Buffer
	env := &homologs.Env{Aligner: aligner, Runner: runner, Out: &out}
	if err := homologs.Run(context.Background(), flags, env); err != nil {
		t.Fatal(err)
	}
	if len(aligner.calls) != 1 {
		t.Fatal("one sequence should skip the preliminary alignment, calls:", len(aligner.calls))
	}
	if len(runner.queries) != 1 || runner.queries[0] != "ACDEFGH" {
		t.Fatal("query should be the ungapped input, got", runner.queries)
	}
}

func TestNucleotideInputWarns(t *testing.T) {
	const warning = "input does not look like protein"
	for _, tc := range []struct {
		in   string
		warn bool
	}{
		{"> d1\nacgtacgtac\n> d2\nTTGCATGCAA\n", true},
		{threeSeqs, false},
	} {
		flags := homologs.NewCmdFlag()
		flags.InFile = writeTemp(t, tc.in)
		var logbuf, out bytes.Buffer
		env := &homologs.Env{Aligner: &padAligner{}, Runner: newRunner(), Out: &out, Log: logger.New(&logbuf)}
		if err := homologs.Run(context.Background(), flags, env); err != nil {
			t.Fatal(err)
		}
		if got := strings.Contains(logbuf.String(), warning); got != tc.warn {
			t.Fatalf("warning logged %v, wanted %v, log:\n%s", got, tc.warn, logbuf.String())
		}
		if !tc.warn {
			continue
		}
		if !strings.Contains(logbuf.String(), "type=DNA") {
			t.Fatal("warning should name the type, log:", logbuf.String())
		}
		if got := readOut(t, out.Bytes()); !bytes.HasPrefix(got[0].GetSeq(), []byte("acgt")) {
			t.Fatal("input case changed by type check:", string(got[0].GetSeq()))
		}
	}
}

func TestSearchFailureIsNotFatal(t *testing.T) {
	flags := homologs.NewCmdFlag()
	flags.InFile = writeTemp(t, threeSeqs)
	flags.Full = true
	runner := &cannedRunner{err: errors.New("network down")}
	var out bytes.Buffer
	env := &homologs.Env{Aligner: &padAligner{}, Runner: runner, Out: &out}
	if err := homologs.Run(context.Background(), flags, env); err != nil {
		t.Fatal(err)
	}
	if got := readOut(t, out.Bytes()); len(got) != 3 {
		t.Fatal("wanted the inputs alone, got", len(got))
	}

	runner = &cannedRunner{answers: map[string]string{}} // empty documents
	out.Reset()
	env.Runner = runner
	if err := homologs.Run(context.Background(), flags, env); err != nil {
		t.Fatal(err)
	}
	if len(runner.queries) != 2 {
		t.Fatal("every active query should still be sent, got", len(runner.queries))
	}
}

func TestTooMany(t *testing.T) {
	var b bytes.Buffer
	args := randseq.RandSeqArgs{Wrtr: &b, Cmmt: "r", Nseq: homologs.MaxSeqs, Len: 20}
	if err := randseq.RandSeqMain(&args); err != nil {
		t.Fatal(err)
	}
	flags := homologs.NewCmdFlag()
	flags.InFile = writeTemp(t, b.String())
	env := &homologs.Env{Aligner: &padAligner{}, Runner: newRunner(), Out: &bytes.Buffer{}}
	if err := homologs.Run(context.Background(), flags, env); !errors.Is(err, homologs.ErrTooMany) {
		t.Fatal("wanted ErrTooMany, got", err)
	}
}

func TestSeedFilesCount(t *testing.T) {
	var b bytes.Buffer
	args := randseq.RandSeqArgs{Wrtr: &b, Cmmt: "r", Nseq: homologs.MaxSeqs - 2, Len: 20}
	if err := randseq.RandSeqMain(&args); err != nil {
		t.Fatal(err)
	}
	flags := homologs.NewCmdFlag()
	flags.InFile = writeTemp(t, threeSeqs)
	flags.MafftOpt = "--seed " + writeTemp(t, b.String())
	env := &homologs.Env{Aligner: &padAligner{}, Runner: newRunner(), Out: &bytes.Buffer{}}
	if err := homologs.Run(context.Background(), flags, env); !errors.Is(err, homologs.ErrTooMany) {
		t.Fatal("seed file sequences should count, got", err)
	}
}

func TestOldAligner(t *testing.T) {
	old := errors.New("too old")
	flags := homologs.NewCmdFlag()
	flags.InFile = writeTemp(t, threeSeqs)
	aligner := &padAligner{version: old}
	env := &homologs.Env{Aligner: aligner, Runner: newRunner(), Out: &bytes.Buffer{}, MinVersion: "5.58"}
	if err := homologs.Run(context.Background(), flags, env); !errors.Is(err, old) {
		t.Fatal("wanted version error, got", err)
	}
	if len(aligner.calls) != 0 {
		t.Fatal("nothing should be aligned with an old aligner")
	}
}

func TestMissingInput(t *testing.T) {
	flags := homologs.NewCmdFlag()
	flags.InFile = "/no/such/file.fa"
	env := &homologs.Env{Aligner: &padAligner{}, Runner: newRunner(), Out: &bytes.Buffer{}}
	if err := homologs.Run(context.Background(), flags, env); err == nil {
		t.Fatal("missing input should fail")
	}
}
