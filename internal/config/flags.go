package config

import (
	"flag"
	"strings"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagContentDir = flag.String("content-dir", "", "Comma-separated fallback content directories")
	flagNoImages   = flag.Bool("no-images", false, "Skip image decoding")
	flagWorkers    = flag.Int("workers", 0, "Background import workers")
	flagLogFile    = flag.String("log-file", "", "Write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments left after ParseFlags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagContentDir != "" {
		for _, dir := range strings.Split(*flagContentDir, ",") {
			if dir = strings.TrimSpace(dir); dir != "" {
				cfg.Import.ContentDirs = append(cfg.Import.ContentDirs, dir)
			}
		}
	}
	if *flagNoImages {
		cfg.Import.DecodeImages = false
	}
	if *flagWorkers > 0 {
		cfg.Import.Workers = *flagWorkers
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
