package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Config holds the configuration for the logger.
type Config struct {
	// Level is the minimum level: debug, info, warn, error or fatal.
	Level string `yaml:"level" env:"LOG_LEVEL" envDefault:"info"`
	// Format is json or text.
	Format string `yaml:"format" env:"LOG_FORMAT" envDefault:"json"`
	// Output is stdout, stderr or a file path.
	Output string `yaml:"output" env:"LOG_OUTPUT" envDefault:"stderr"`
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: string(JSONFormat),
		Output: "stderr",
	}
}

// NewLogger creates a logger from cfg. A nil cfg uses DefaultConfig.
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var format Format
	switch strings.ToLower(cfg.Format) {
	case "", string(JSONFormat):
		format = JSONFormat
	case string(TextFormat):
		format = TextFormat
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	output, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	return NewWithFormat(level, format, output), nil
}

// ParseLevel converts a case-insensitive level name to LogLevel. The empty
// string means INFO.
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DebugLevel, nil
	case "", "INFO":
		return InfoLevel, nil
	case "WARN", "WARNING":
		return WarnLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	case "FATAL":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// openOutput returns an io.Writer for the given output destination.
func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		file, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log output: %w", err)
		}
		return file, nil
	}
}
