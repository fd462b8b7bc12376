package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log field names shared by every package.
const (
	FieldModule    = "module"
	FieldAction    = "action"
	FieldRequestID = "request_id"
	FieldRecordID  = "record_id"
	FieldReference = "reference"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// ConfigureLogger sets level and output once at startup. pretty switches to
// the human-readable console writer.
func ConfigureLogger(level string, pretty bool) {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	logger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// SetLogger swaps the base logger and returns the previous one.
func SetLogger(l zerolog.Logger) zerolog.Logger {
	prev := logger
	logger = l
	return prev
}

// Logger returns a child logger tagged with module.
func Logger(module string) zerolog.Logger {
	return logger.With().Str(FieldModule, strings.ToLower(module)).Logger()
}

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	logger.Info().
		Str(FieldModule, strings.ToLower(module)).
		Str(FieldAction, action).
		Str(FieldRequestID, strings.TrimSpace(requestID)).
		Msg(message)
}
