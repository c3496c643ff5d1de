package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrew-torda/homologs/pkg/homologs"
	. "github.com/andrew-torda/homologs/pkg/seq/common"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := homologs.MyMain(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if ctx.Err() != nil && code == ExitSuccess {
		code = ExitInterrupt
	}
	stop()
	os.Exit(code)
}
