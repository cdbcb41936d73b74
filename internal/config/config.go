// Package config handles asset tool configuration loading and management.
package config

// Config holds all asset tool settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds game data locations.
type DataConfig struct {
	RootDir     string   `yaml:"root_dir"`     // Game installation data directory
	TextureDirs []string `yaml:"texture_dirs"` // Extra directories searched for TXD files
}

// ExportConfig holds texture export settings.
type ExportConfig struct {
	Format    string `yaml:"format"` // png, webp or tga
	OutputDir string `yaml:"output_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			RootDir: ".",
		},
		Export: ExportConfig{
			Format:    "png",
			OutputDir: "export",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
