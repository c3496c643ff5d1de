// 3 Aug 2020

// Package numseq counts the sequences in a fasta file without reading
// them. A sequence starts with ">" at the beginning of a line.
package numseq

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

const cmmtChar = '>'

// countBuf counts the comment characters in buf which are at the start
// of a line. atStart says whether buf itself begins a line.
func countBuf(buf []byte, atStart bool) int {
	n := 0
	if atStart && len(buf) > 0 && buf[0] == cmmtChar {
		n++
	}
	n += bytes.Count(buf, []byte{'\n', cmmtChar})
	return n
}

// ByMmap maps the file and counts. A zero length file cannot be
// mapped, but it has no sequences either.
func ByMmap(fname string) (int, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return 0, err
	}
	defer fp.Close()
	fi, err := fp.Stat()
	if err != nil {
		return 0, err
	}
	if fi.Size() == 0 {
		return 0, nil
	}
	if !fi.Mode().IsRegular() {
		return ByReading(fp)
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("mapping %s: %w", fname, err)
	}
	defer mm.Unmap()
	return countBuf(mm, true), nil
}

// ByReading counts from a reader, a line at a time. Used for pipes and
// anything else that cannot be mapped.
func ByReading(rdr io.Reader) (int, error) {
	br := bufio.NewReader(rdr)
	count := 0
	atStart := true
	for {
		b, err := br.ReadSlice('\n')
		if atStart && len(b) > 0 && b[0] == cmmtChar {
			count++
		}
		atStart = err == nil // a full line was read
		if err == io.EOF {
			return count, nil
		}
		if err != nil && err != bufio.ErrBufferFull {
			return 0, err
		}
	}
}

// Count returns the number of sequences in the named file.
func Count(fname string) (int, error) {
	return ByMmap(fname)
}
