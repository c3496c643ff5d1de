// Package config holds the installation settings: where the external
// programs live, which databases to search and how long to wait for the
// remote search service. Per-run choices come from the command line.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MafftPath is the aligner. A bare name is looked up in $PATH.
	MafftPath string `koanf:"mafft_path"`

	// MinMafftVersion is the oldest aligner we will run with.
	MinMafftVersion string `koanf:"min_mafft_version"`

	// BlastPath is the local search program. If empty, it is "blastall"
	// or "blastp" depending on BlastFlavor.
	BlastPath string `koanf:"blast_path"`

	// BlastFlavor says how to talk to BlastPath: "blastall" (legacy
	// NCBI toolkit) or "blastplus" (blastp from BLAST+).
	BlastFlavor string `koanf:"blast_flavor"`

	// LocalDB is the database searched by the local program.
	LocalDB string `koanf:"local_db"`

	// RemoteURL is the NCBI BLAST URL API endpoint.
	RemoteURL string `koanf:"remote_url"`

	// RemoteDB is the database searched remotely.
	RemoteDB string `koanf:"remote_db"`

	// PollIntervalS is the pause in seconds between asking the remote
	// service whether a search has finished.
	PollIntervalS int `koanf:"poll_interval_s"`

	// MaxPolls caps how often we ask before giving up on a query.
	MaxPolls int `koanf:"max_polls"`

	// HTTPTimeoutS bounds each single HTTP request, in seconds.
	HTTPTimeoutS int `koanf:"http_timeout_s"`

	// CachePath, if set, is an sqlite file caching raw search results.
	CachePath string `koanf:"cache_path"`

	// MetricsFile, if set, gets the run's metrics in Prometheus text format.
	MetricsFile string `koanf:"metrics_file"`

	// IdentityThreshold is the fraction identity above which one of a
	// pair of input sequences is not used as a query. It must be above
	// zero and at most one.
	IdentityThreshold float64 `koanf:"identity_threshold"`
}

// Flavours of local search program.
const (
	FlavorBlastall  = "blastall"
	FlavorBlastPlus = "blastplus"
)

// New creates a Config with the defaults. Context is accepted first to
// match Load.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		MafftPath:         "mafft",
		MinMafftVersion:   "5.58",
		BlastFlavor:       FlavorBlastall,
		LocalDB:           "sp",
		RemoteURL:         "https://blast.ncbi.nlm.nih.gov/blast/Blast.cgi",
		RemoteDB:          "swissprot",
		PollIntervalS:     10,
		MaxPolls:          360,
		HTTPTimeoutS:      120,
		IdentityThreshold: 0.5,
	}
}

// Validate checks values that would make a run fail later in a less
// obvious way.
func (c *Config) Validate() error {
	switch {
	case c.MafftPath == "":
		return wrapInvalid("mafft_path must not be empty")
	case c.BlastFlavor != FlavorBlastall && c.BlastFlavor != FlavorBlastPlus:
		return wrapInvalid("blast_flavor must be %q or %q, got %q",
			FlavorBlastall, FlavorBlastPlus, c.BlastFlavor)
	case c.PollIntervalS < 0:
		return wrapInvalid("poll_interval_s must not be negative")
	case c.MaxPolls < 1:
		return wrapInvalid("max_polls must be at least 1")
	case c.HTTPTimeoutS < 1:
		return wrapInvalid("http_timeout_s must be at least 1")
	case c.IdentityThreshold <= 0 || c.IdentityThreshold > 1:
		return wrapInvalid("identity_threshold must be above 0 and at most 1")
	}
	return nil
}
