package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagData   = flag.String("data", "", "Game data directory")
	flagFormat = flag.String("format", "", "Texture export format (png, webp, tga)")
	flagOut    = flag.String("out", "", "Export output directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
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
	if *flagData != "" {
		cfg.Data.RootDir = *flagData
	}
	if *flagFormat != "" {
		cfg.Export.Format = *flagFormat
	}
	if *flagOut != "" {
		cfg.Export.OutputDir = *flagOut
	}
}
