package config

import (
	"path/filepath"
	"runtime"

	"arrimeta/internal/schema"
)

const (
	defaultConfigPath     = "~/.config/arrimeta/config.toml"
	defaultCatalogFile    = "catalog.db"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultDebounceMillis = 500
)

var defaultSupportedFiles = []string{"ari", "arx"}

func defaultWorkers() int {
	return max(1, runtime.GOMAXPROCS(0))
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	sets := schema.DefaultSets()
	dataDir := defaultDataDir()
	return Config{
		SupportedFiles: append([]string(nil), defaultSupportedFiles...),
		DefaultFields:  sets.Default,
		MinimalFields:  sets.Minimal,
		Paths: Paths{
			CatalogPath: filepath.Join(dataDir, defaultCatalogFile),
			LogDir:      "",
		},
		Batch: Batch{
			Workers:           defaultWorkers(),
			FirstFramePerClip: true,
		},
		Watch: Watch{
			DebounceMillis: defaultDebounceMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
