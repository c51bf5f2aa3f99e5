// Package config resolves ocrpipe settings from CLI flags, environment
// variables, and defaults, in that precedence order.
//
// Flags are bound into viper by the CLI entry point; environment variables
// use the OCRPIPE_ prefix (e.g. OCRPIPE_ENGINE, OCRPIPE_DPI). A .env file in
// the working directory is loaded first when present.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ocrpipe/internal/raster"
)

// Settings holds the resolved configuration for one CLI invocation.
type Settings struct {
	LogLevel string // Log level name (debug|info|warn|error|fatal)
	LogFile  string // Log destination file; empty means stderr
	Engine   string // Catalog engine name; empty selects the default
	Command  string // Raw recognition command override; wins over Engine
	PSM      int    // Tesseract page segmentation mode; 0 means engine default
	DPI      int    // Rasterization resolution for PDF pages
}

// Load resolves the settings from the global viper instance, which the CLI
// has already bound its flags into. Missing .env files are not an error.
func Load() *Settings {
	_ = godotenv.Load()

	v := viper.GetViper()
	v.SetEnvPrefix("OCRPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("dpi", raster.DefaultDPI)

	return &Settings{
		LogLevel: v.GetString("log-level"),
		LogFile:  v.GetString("log-file"),
		Engine:   v.GetString("engine"),
		Command:  v.GetString("ocr-command"),
		PSM:      v.GetInt("psm"),
		DPI:      v.GetInt("dpi"),
	}
}
