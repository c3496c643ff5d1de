package mafft_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/andrew-torda/homologs/pkg/mafft"
	"github.com/andrew-torda/homologs/pkg/seq"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"7.221", "5.58", 1},
		{"5.8", "5.58", -1},
		{"5.58", "5.58", 0},
		{"5.58.1", "5.58", 1},
		{"0", "5.58", -1},
		{"10.0", "9.99", 1},
		{"7.505b", "7.505", 0},
	}
	for _, tt := range tests {
		if got := mafft.CompareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareVersions(%q, %q) got %d want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestOpts(t *testing.T) {
	got := mafft.PrelimOpts(true, 0.5, 100)
	want := []string{"--maxiterate", "0", "--retree", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatal("entire: got", got)
	}
	got = mafft.PrelimOpts(false, 0.5, 100)
	want = []string{"--maxiterate", "1000", "--localpair", "--core", "--coreext",
		"--corethr", "0.5", "--corewin", "100"}
	if !reflect.DeepEqual(got, want) {
		t.Fatal("core: got", got)
	}
	got = mafft.FinalOpts(" --ep 0.2  --seed x.fa ")
	want = []string{"--op", "1.53", "--ep", "0.123", "--localpair", "--maxiterate",
		"1000", "--reorder", "--ep", "0.2", "--seed", "x.fa"}
	if !reflect.DeepEqual(got, want) {
		t.Fatal("final: got", got)
	}
}

func TestSeedFiles(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"--seed a.fa", []string{"a.fa"}},
		{"--ep 0 --seed a.fa --seed b.fa", []string{"a.fa", "b.fa"}},
		{"--seed", nil},
	} {
		if got := mafft.SeedFiles(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SeedFiles(%q) got %v want %v", tt.in, got, tt.want)
		}
	}
}

// fakeMafft writes a shell script which pretends to be the aligner.
// It prints a version for --help and otherwise copies its last argument
// to standard output.
func fakeMafft(t *testing.T, version string) string {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	script := `#!/bin/sh
if [ "$1" = "--help" ]; then
  echo "------------------------------" >&2
  echo "  MAFFT ` + version + ` (2015/Jun/3)" >&2
  exit 1
fi
for last; do :; done
cat "$last"
`
	p := filepath.Join(t.TempDir(), "mafft")
	if err := os.WriteFile(p, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestVersion(t *testing.T) {
	ctx := context.Background()
	m := mafft.Mafft{Path: fakeMafft(t, "v7.221")}
	v, err := m.Version(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v != "7.221" {
		t.Fatal("version got", v)
	}
	if err := m.CheckVersion(ctx, "5.58"); err != nil {
		t.Fatal(err)
	}
	old := mafft.Mafft{Path: fakeMafft(t, "v5.8")}
	if err := old.CheckVersion(ctx, "5.58"); !errors.Is(err, mafft.ErrAlignerVersion) {
		t.Fatal("wanted version error, got", err)
	}
}

func TestMissing(t *testing.T) {
	m := mafft.Mafft{Path: filepath.Join(t.TempDir(), "not_there")}
	_, err := m.Align(context.Background(), nil, nil)
	if !errors.Is(err, mafft.ErrAlignerMissing) {
		t.Fatal("wanted missing error, got", err)
	}
	if err := m.CheckVersion(context.Background(), "5.58"); !errors.Is(err, mafft.ErrAlignerMissing) {
		t.Fatal("wanted missing error, got", err)
	}
}

func TestAlign(t *testing.T) {
	m := mafft.Mafft{Path: fakeMafft(t, "v7.221")}
	in := seq.Str2SeqGrp([]string{"AC-DE", "ACGDE"}, "q").SeqSlc()
	out, err := m.Align(context.Background(), in, mafft.FinalOpts(""))
	if err == nil {
		t.Fatal("gap stripped input of unequal length should not read as an alignment")
	}
	in = seq.Str2SeqGrp([]string{"AC-DEF", "ACGDE-"}, "q").SeqSlc()
	if out, err = m.Align(context.Background(), in, nil); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatal("wanted 2 sequences, got", len(out))
	}
	if string(out[0].GetSeq()) != "ACDEF" || out[1].GetCmmt() != "q1" {
		t.Fatal("unexpected output", out[0], out[1])
	}
}

func TestCancel(t *testing.T) {
	m := mafft.Mafft{Path: fakeMafft(t, "v7.221")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := seq.Str2SeqGrp([]string{"ACDEF"}).SeqSlc()
	if _, err := m.Align(ctx, in, nil); err == nil {
		t.Fatal("cancelled context should stop the aligner")
	}
}
