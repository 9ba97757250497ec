package config

import "fmt"

// LoggerConfig controls how the process logger writes its output.
type LoggerConfig struct {
	// Level is the minimum level that gets written (debug, info, warn, error).
	Level string
	// Encoding selects the line format: json for machines, console for humans.
	Encoding string
	// Output names the sink: stdout or stderr.
	Output string
}

// LoadLoggerConfigFromEnv reads LOG_* environment variables, defaulting to
// info-level JSON on stdout.
func LoadLoggerConfigFromEnv() LoggerConfig {
	return LoggerConfig{
		Level:    GetEnv("LOG_LEVEL", "info"),
		Encoding: GetEnv("LOG_ENCODING", "json"),
		Output:   GetEnv("LOG_OUTPUT", "stdout"),
	}
}

// Validate checks that every field names a supported option.
func (c LoggerConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be: debug, info, warn, error)", c.Level)
	}

	switch c.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log encoding: %s (must be: json, console)", c.Encoding)
	}

	switch c.Output {
	case "stdout", "stderr":
	default:
		return fmt.Errorf("invalid log output: %s (must be: stdout, stderr)", c.Output)
	}

	return nil
}
