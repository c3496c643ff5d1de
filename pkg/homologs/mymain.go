package homologs

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/andrew-torda/homologs/pkg/blast"
	"github.com/andrew-torda/homologs/pkg/config"
	"github.com/andrew-torda/homologs/pkg/logger"
	"github.com/andrew-torda/homologs/pkg/mafft"
	"github.com/andrew-torda/homologs/pkg/metrics"
	"github.com/andrew-torda/homologs/pkg/searchcache"
	. "github.com/andrew-torda/homologs/pkg/seq/common"
)

const usageHead = `usage: homologs [options] input_file

Align the sequences in input_file together with homologues found by a
similarity search. The alignment goes to standard output.
Installation settings come from the environment (HOMOLOGS_*) or a YAML
file named by HOMOLOGS_CONFIG.

`

// parseArgs reads the command line. A nil CmdFlag with a nil error means
// help was asked for.
func parseArgs(argv []string, stderr io.Writer) (*CmdFlag, error) {
	flags := NewCmdFlag()
	fs := flag.NewFlagSet("homologs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageHead)
		fs.PrintDefaults()
	}
	fs.IntVar(&flags.NAdd, "a", flags.NAdd, "maximum number of homologues to add")
	fs.Float64Var(&flags.EValue, "e", flags.EValue, "E-value cutoff for the search")
	fs.StringVar(&flags.MafftOpt, "o", "", "extra options for the final alignment, quoted")
	fs.BoolVar(&flags.Local, "l", false, "search a local database instead of NCBI")
	fs.BoolVar(&flags.Full, "f", false, "keep the homologues in the output")
	fs.BoolVar(&flags.Strip, "s", false, "leave the homologues out of the output (default, wins over -f)")
	fs.BoolVar(&flags.Entire, "w", false, "rough alignment of entire sequences rather than the core")
	fs.IntVar(&flags.CoreWin, "c", flags.CoreWin, "core window size")
	fs.Float64Var(&flags.CoreThr, "d", flags.CoreThr, "core identity threshold")
	fs.Int64Var(&flags.Seed, "r", 0, "random seed for picking homologues")
	fs.BoolVar(&flags.Verbose, "v", false, "debug output on standard error")

	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, fmt.Errorf("%w: want one input file, got %d arguments", ErrUsage, fs.NArg())
	}
	if flags.NAdd < 0 {
		return nil, fmt.Errorf("%w: -a must not be negative", ErrUsage)
	}
	flags.InFile = fs.Arg(0)
	return flags, nil
}

// newRunner picks the search program and puts the cache in front of it
// if there is one.
func newRunner(cfg *config.Config, flags *CmdFlag, log logger.Logger) blast.Runner {
	if flags.Local {
		return &blast.Local{
			Path:   cfg.BlastPath,
			Flavor: cfg.BlastFlavor,
			DB:     cfg.LocalDB,
			EValue: flags.EValue,
		}
	}
	return &blast.Remote{
		URL:          cfg.RemoteURL,
		Database:     cfg.RemoteDB,
		HitList:      flags.NAdd,
		EValue:       flags.EValue,
		PollInterval: time.Duration(cfg.PollIntervalS) * time.Second,
		MaxPolls:     cfg.MaxPolls,
		Client:       &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutS) * time.Second},
		Log:          log.Named("remote"),
	}
}

// cachePrefix holds the settings that change a search result.
func cachePrefix(cfg *config.Config, flags *CmdFlag) string {
	if flags.Local {
		return fmt.Sprintf("local %s %s %g", cfg.BlastFlavor, cfg.LocalDB, flags.EValue)
	}
	return fmt.Sprintf("remote %s %s %g %d", cfg.RemoteURL, cfg.RemoteDB, flags.EValue, flags.NAdd)
}

// MyMain runs the command and returns the exit code. Output goes to
// stdout, everything else to stderr.
func MyMain(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	flags, err := parseArgs(argv, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsageError
	}
	if flags == nil {
		return ExitSuccess
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitFailure
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		fmt.Fprintln(stderr, err)
		return ExitFailure
	}
	if flags.Verbose {
		logger.SetLevel(slog.LevelDebug)
	}
	runID := uuid.NewString()
	log := logger.New(stderr).With(logger.String("run", runID))

	var met *metrics.Manager
	if cfg.MetricsFile != "" {
		met = metrics.NewManager(metrics.WithConstLabels(map[string]string{"run": runID}))
		defer func() {
			if err := met.WriteTextfile(cfg.MetricsFile); err != nil {
				log.Warn(ctx, "writing metrics", logger.Error(err))
			}
		}()
	}

	runner := newRunner(cfg, flags, log)
	if cfg.CachePath != "" {
		cache, err := searchcache.Open(cfg.CachePath)
		if err != nil {
			log.Error(ctx, "search cache", logger.Error(err))
			return ExitFailure
		}
		defer cache.Close()
		cache.Metrics = met
		runner = cache.Wrap(runner, cachePrefix(cfg, flags))
	}

	env := &Env{
		Aligner:    &mafft.Mafft{Path: cfg.MafftPath, Stderr: stderr},
		Runner:     runner,
		Out:        stdout,
		Log:        log,
		Metrics:    met,
		MinVersion: cfg.MinMafftVersion,
		Threshold:  cfg.IdentityThreshold,
	}
	if err := Run(ctx, flags, env); err != nil {
		if ctx.Err() != nil {
			log.Info(ctx, "interrupted")
			return ExitInterrupt
		}
		if errors.Is(err, syscall.EPIPE) { // reader of stdout went away
			return ExitSuccess
		}
		log.Error(ctx, "homologs failed", logger.Error(err))
		return ExitFailure
	}
	return ExitSuccess
}
