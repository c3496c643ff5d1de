// 20 April 2020

/*
Squash removes columns from a multiple sequence alignment.

Usage:

	squash [-o output] [-w width] reference [input]
	squash -g [-o output] [-w width] [input]

Columns where the reference sequence has a gap are removed from every
sequence. If reference is an integer like "1", it is the number of the
sequence, counting from 1. Otherwise it is looked for inside the
comments and the first match is used, so quote it and make it specific.
With -g there is no reference and only columns that are all gaps go,
which is what homologs does to its output after dropping the homologues.

With no input file, stdin is read. With no -o, stdout is used.
*/
package main
