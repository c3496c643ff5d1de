// Package white strips white space out of byte slices. Sequence lines in
// fasta files are full of blanks, tabs and carriage returns.
package white

var asciiSpace = [256]bool{
	'\t': true, '\n': true, '\v': true, '\f': true, '\r': true, ' ': true,
}

func isWhite(c byte) bool { return asciiSpace[c] }

// Remove acts on a byte slice, in place and removes all the white
// space. The slice comes back with the length adjusted, but the capacity
// unchanged.
func Remove(sIn *[]byte) {
	s := *sIn
	n := 0
	for _, c := range s {
		if !isWhite(c) {
			s[n] = c
			n++
		}
	}
	*sIn = s[:n]
}

// Has says whether there is any white space in s at all.
func Has(s []byte) bool {
	for _, c := range s {
		if isWhite(c) {
			return true
		}
	}
	return false
}
