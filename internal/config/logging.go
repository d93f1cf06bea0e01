package config

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseZerologLevel converts a level name into zerolog.Level, defaulting to info.
func ParseZerologLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "info":
		fallthrough
	default:
		return zerolog.InfoLevel
	}
}

// SetupLogger points the global logger at w with the given level.
func SetupLogger(w io.Writer, level string) {
	zerolog.SetGlobalLevel(ParseZerologLevel(level))
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
