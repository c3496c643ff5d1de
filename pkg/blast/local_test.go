package blast_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/homologs/pkg/blast"
)

// fakeBlast writes a script which records its arguments and query file,
// then prints out.
func fakeBlast(t *testing.T, out string) (prog, argFile string) {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	dir := t.TempDir()
	argFile = filepath.Join(dir, "args")
	resFile := filepath.Join(dir, "result.xml")
	if err := os.WriteFile(resFile, []byte(out), 0o644); err != nil {
		t.Fatal(err)
	}
	script := `#!/bin/sh
echo "$@" > ` + argFile + `
while [ $# -gt 0 ]; do
  case "$1" in
    -i|-query) cat "$2" >> ` + argFile + ` ;;
  esac
  shift
done
cat ` + resFile + `
`
	prog = filepath.Join(dir, "blast")
	if err := os.WriteFile(prog, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return prog, argFile
}

func TestLocal(t *testing.T) {
	doc := docXML(hitXML("sp|P1|A", "80", "ACDE"))
	for _, tt := range []struct {
		flavor string
		want   string
	}{
		{blast.Blastall, "-p blastp -e 1e-10 -b 1000 -m 7 -i "},
		{blast.BlastPlus, "-evalue 1e-10 -max_target_seqs 1000 -outfmt 5 -query "},
	} {
		prog, argFile := fakeBlast(t, doc)
		l := &blast.Local{Path: prog, Flavor: tt.flavor, DB: "sp", EValue: 1e-10}
		got, _, err := blast.Search(context.Background(), l, []byte("KLMNPQ"))
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Score != 80 {
			t.Fatalf("%s: wrong hits %+v", tt.flavor, got)
		}
		b, err := os.ReadFile(argFile)
		if err != nil {
			t.Fatal(err)
		}
		args := string(b)
		if !strings.HasPrefix(args, tt.want) {
			t.Errorf("%s: args %q", tt.flavor, args)
		}
		if !strings.Contains(args, "> \nKLMNPQ\n") {
			t.Errorf("%s: query file not as expected %q", tt.flavor, args)
		}
	}
}

func TestLocalFails(t *testing.T) {
	l := &blast.Local{Path: filepath.Join(t.TempDir(), "no_blast"), DB: "sp", EValue: 1}
	if _, err := l.Run(context.Background(), []byte("ACDE")); !errors.Is(err, blast.ErrSearchTool) {
		t.Fatal("wanted ErrSearchTool, got", err)
	}
}
