package console

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// EnvLogLevel define o nível do log de diagnóstico quando --debug não é usado.
const EnvLogLevel = "AWS_OPTIMIZER_LOG"

// ParseLogLevel converte debug|info|warn|error; qualquer outro valor desliga o log.
func ParseLogLevel(s string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "info":
		return pterm.LogLevelInfo
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	default:
		return pterm.LogLevelDisabled
	}
}

// NewLogger cria o logger estruturado. debug força o nível debug; senão vale
// AWS_OPTIMIZER_LOG.
func NewLogger(w io.Writer, debug bool) *pterm.Logger {
	level := ParseLogLevel(os.Getenv(EnvLogLevel))
	if debug {
		level = pterm.LogLevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	return pterm.DefaultLogger.
		WithLevel(level).
		WithWriter(w).
		WithTime(true)
}
