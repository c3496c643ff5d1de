// 31 July 2020

/*
Randseq makes random protein sequences for trying out the other tools.

Usage:

	randseq [options] fname nseq length

writes nseq sequences of the given length to fname ("-" for stdout).

Flags:

	-g frac
		fraction of positions which are gaps (default 0)
	-w
		scatter blanks and line breaks through the sequences, as
		untidy fasta files do
	-r seed
		random number seed
	-c comment
		comment on each sequence, followed by its number

The same seed always gives the same sequences.
*/
package main
