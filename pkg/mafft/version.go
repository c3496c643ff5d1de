package mafft

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
	"unicode"
)

// parseVersion looks for the first line mentioning "MAFFT v" in help
// output and returns the version number on it, such as "7.221".
// It returns "0" if there is no such line.
func parseVersion(help []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(help))
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "MAFFT v") {
			continue
		}
		line = strings.TrimLeftFunc(line, func(r rune) bool { return !unicode.IsDigit(r) })
		if f := strings.Fields(line); len(f) > 0 {
			return f[0]
		}
	}
	return "0"
}

// leadInt gives the number at the start of s, so "221b" is 221.
func leadInt(s string) int {
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		end = len(s)
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// CompareVersions compares dotted version strings field by field as
// numbers. 7.221 is newer than 5.58 and 5.8 is older than 5.58.
// The result is -1, 0 or 1 in the manner of strings.Compare.
func CompareVersions(a, b string) int {
	fa := strings.Split(a, ".")
	fb := strings.Split(b, ".")
	for i := 0; i < len(fa) || i < len(fb); i++ {
		var na, nb int
		if i < len(fa) {
			na = leadInt(fa[i])
		}
		if i < len(fb) {
			nb = leadInt(fb[i])
		}
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
	}
	return 0
}
