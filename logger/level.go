package logger

import "strings"

// Level is the severity threshold of a subsystem logger. Messages below
// the configured level are dropped before formatting.
type Level uint32

// Levels in increasing severity. LevelOff silences a subsystem entirely.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

// levelTags are the three-letter tags written into log lines.
var levelTags = [...]string{"TRC", "DBG", "INF", "WRN", "ERR", "CRT", "OFF"}

// LevelFromString parses the value of the --loglevel flag. Both the long
// names and the three-letter tags are accepted. Unrecognized input yields
// the info level and false.
func LevelFromString(s string) (l Level, ok bool) {
	switch strings.ToLower(s) {
	case "trace", "trc":
		return LevelTrace, true
	case "debug", "dbg":
		return LevelDebug, true
	case "info", "inf":
		return LevelInfo, true
	case "warn", "wrn":
		return LevelWarn, true
	case "error", "err":
		return LevelError, true
	case "critical", "crt":
		return LevelCritical, true
	case "off":
		return LevelOff, true
	default:
		return LevelInfo, false
	}
}

// String returns the tag written into log lines, or "OFF" for any level
// that produces no output.
func (l Level) String() string {
	if l >= LevelOff {
		return "OFF"
	}
	return levelTags[l]
}
