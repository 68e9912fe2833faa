package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"arrimeta/internal/config"
)

// LogFileName is the JSON log written inside paths.log_dir.
const LogFileName = "arrimeta.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Output receives formatted records; nil means stderr so stdout stays free
	// for extracted metadata.
	Output io.Writer
	// LogFile additionally receives every record as JSON when set.
	LogFile string
	// ComponentLevels overrides the level for loggers tagged with a component.
	ComponentLevels map[string]string
	Development     bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	overrides := make(map[string]slog.Level, len(opts.ComponentLevels))
	handlerLevel := level
	for component, value := range opts.ComponentLevels {
		parsed, err := ParseLevel(value)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", component, err)
		}
		overrides[strings.ToLower(component)] = parsed
		handlerLevel = min(handlerLevel, parsed)
	}

	// handlers run at the most verbose level any component needs; the
	// component filter below enforces the effective level per logger
	levelVar := new(slog.LevelVar)
	levelVar.Set(handlerLevel)
	addSource := opts.Development || level <= slog.LevelDebug

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	var primary slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		primary = newPrettyHandler(output, levelVar, addSource)
	case "json":
		primary = newJSONHandler(output, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	handlers := []slog.Handler{primary}
	if path := strings.TrimSpace(opts.LogFile); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, newJSONHandler(file, levelVar, true))
	}

	handler := newFanoutHandler(handlers...)
	return slog.New(newComponentLevelHandler(handler, level, overrides)), nil
}

// NewFromConfig creates a logger using application config defaults.
func NewFromConfig(cfg *config.Config, output io.Writer) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Output: output})
	}

	opts := Options{
		Level:           cfg.Logging.Level,
		Format:          cfg.Logging.Format,
		Output:          output,
		ComponentLevels: cfg.Logging.ComponentOverrides,
	}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		opts.LogFile = filepath.Join(dir, LogFileName)
	}
	return New(opts)
}

// ParseLevel maps a configured level name to a slog level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log level: unsupported value %q", level)
	}
}

func openLogFile(path string) (io.Writer, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
