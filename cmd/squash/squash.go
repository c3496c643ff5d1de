package main

import (
	"os"

	"github.com/andrew-torda/homologs/pkg/squash"
)

func main() {
	os.Exit(squash.MyMain(os.Args[1:], os.Stdout, os.Stderr))
}
