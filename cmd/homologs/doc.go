// 16 Oct 2026

/*
Homologs aligns a handful of related protein sequences together with
homologues fetched by a similarity search.

Usage:

	homologs [-a N] [-e X] [-o "mafft options"] [-l] [-f|-s] [-w] [-c N] [-d X] [-r SEED] [-v] input_file > output

The input sequences are first roughly aligned. If two of them are more
than half identical, only the longer one is used as a query. Each query
is sent to NCBI, or with -l to a local database. Every hit is kept once,
with its best score. Up to -a of them (default 50) are picked at random
and aligned with the input. By default the homologues are then thrown
away again, so the output has the input sequences, aligned with help from
their relatives. With -f they stay in, with names starting "_ho_".

Fewer than 100 input sequences are allowed. Sequences from files named
with --seed inside -o count as input.

Where mafft and the search programs live, which databases to use and how
long to wait for NCBI are set with environment variables such as
HOMOLOGS_MAFFT_PATH, or a YAML file named by HOMOLOGS_CONFIG.

Exit codes: 0 success, 1 failure, 2 bad usage, 130 interrupted.
*/
package main
