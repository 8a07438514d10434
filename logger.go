package lizechat

import (
	"io"
	"strings"

	"github.com/labstack/gommon/log"
)

// NewLogger returns the leveled logger shared by the loader, CLI and server.
func NewLogger(w io.Writer, level string) *log.Logger {
	l := log.New("lizechat")
	l.SetHeader("${time_rfc3339} ${level} ${prefix}")
	if w != nil {
		l.SetOutput(w)
	}
	l.SetLevel(ParseLevel(level))
	return l
}

// ParseLevel maps a level name to a gommon level, defaulting to INFO.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
