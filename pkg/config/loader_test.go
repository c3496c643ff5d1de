package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/andrew-torda/homologs/pkg/config"
	"github.com/smartystreets/goconvey/convey"
)

var envKeys = []string{
	config.EnvConfigFile,
	"HOMOLOGS_LOG_LEVEL",
	"HOMOLOGS_MAFFT_PATH",
	"HOMOLOGS_BLAST_FLAVOR",
	"HOMOLOGS_MAX_POLLS",
	"HOMOLOGS_IDENTITY_THRESHOLD",
	"HOMOLOGS_CACHE_PATH",
}

func clearConfigEnvVars() {
	for _, k := range envKeys {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "homologs-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	return f.Name()
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.MafftPath, convey.ShouldEqual, "mafft")
				convey.So(cfg.MinMafftVersion, convey.ShouldEqual, "5.58")
				convey.So(cfg.BlastFlavor, convey.ShouldEqual, config.FlavorBlastall)
				convey.So(cfg.LocalDB, convey.ShouldEqual, "sp")
				convey.So(cfg.RemoteDB, convey.ShouldEqual, "swissprot")
				convey.So(cfg.PollIntervalS, convey.ShouldEqual, 10)
				convey.So(cfg.IdentityThreshold, convey.ShouldEqual, 0.5)
				convey.So(cfg.CachePath, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HOMOLOGS_MAFFT_PATH", "/opt/mafft/bin/mafft")
			_ = os.Setenv("HOMOLOGS_BLAST_FLAVOR", "blastplus")
			_ = os.Setenv("HOMOLOGS_MAX_POLLS", "7")
			_ = os.Setenv("HOMOLOGS_IDENTITY_THRESHOLD", "0.8")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MafftPath, convey.ShouldEqual, "/opt/mafft/bin/mafft")
				convey.So(cfg.BlastFlavor, convey.ShouldEqual, config.FlavorBlastPlus)
				convey.So(cfg.MaxPolls, convey.ShouldEqual, 7)
				convey.So(cfg.IdentityThreshold, convey.ShouldEqual, 0.8)
				convey.So(cfg.LocalDB, convey.ShouldEqual, "sp")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			clearConfigEnvVars()
			yamlContent := `
mafft_path: /usr/local/bin/mafft
local_db: uniref50
cache_path: /tmp/homologs.db
max_polls: 20
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv(config.EnvConfigFile, tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MafftPath, convey.ShouldEqual, "/usr/local/bin/mafft")
				convey.So(cfg.LocalDB, convey.ShouldEqual, "uniref50")
				convey.So(cfg.CachePath, convey.ShouldEqual, "/tmp/homologs.db")
				convey.So(cfg.MaxPolls, convey.ShouldEqual, 20)
				convey.So(cfg.RemoteDB, convey.ShouldEqual, "swissprot")
			})
		})

		convey.Convey("When both YAML and environment set a value", func() {
			clearConfigEnvVars()
			tmpFile := createTempConfigFile("mafft_path: /from/file\nlocal_db: pdb\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv(config.EnvConfigFile, tmpFile)
			_ = os.Setenv("HOMOLOGS_MAFFT_PATH", "/from/env")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the environment wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MafftPath, convey.ShouldEqual, "/from/env")
				convey.So(cfg.LocalDB, convey.ShouldEqual, "pdb")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			clearConfigEnvVars()
			_ = os.Setenv(config.EnvConfigFile, "/no/such/dir/homologs.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail with a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value is out of range", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HOMOLOGS_BLAST_FLAVOR", "psiblast")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail validation", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the identity threshold is set to zero", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HOMOLOGS_IDENTITY_THRESHOLD", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it is not silently replaced by the default", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given default config", t, func() {
		cfg := config.New(context.Background())
		convey.So(cfg.Validate(), convey.ShouldBeNil)

		convey.Convey("A threshold above one is rejected", func() {
			cfg.IdentityThreshold = 1.5
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
		convey.Convey("A zero threshold is rejected", func() {
			cfg.IdentityThreshold = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
		convey.Convey("A threshold of exactly one is accepted", func() {
			cfg.IdentityThreshold = 1
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
		convey.Convey("Zero polls is rejected", func() {
			cfg.MaxPolls = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
		convey.Convey("An empty aligner path is rejected", func() {
			cfg.MafftPath = ""
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}
