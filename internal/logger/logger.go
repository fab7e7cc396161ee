package logger

import (
	"io"
	"os"

	"rivals-tracker/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	return NewWithWriter(os.Stdout, zerolog.DebugLevel)
}

func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger.Level(level)
}

// ParseLevel falls back to info for unknown names.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// ApplyLevel sets the process-wide minimum level from LOG_LEVEL. It holds for every
// logger already handed out, whatever level it was built with.
func ApplyLevel(cfg *config.Config, logger zerolog.Logger) {
	level := ParseLevel(cfg.LogLevel)
	logger.Info().Str("level", level.String()).Msg("applying log level")
	zerolog.SetGlobalLevel(level)
}

var Module = fx.Provide(New)
