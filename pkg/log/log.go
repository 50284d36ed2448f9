// Package log provides leveled logging with a calling convention of
// log.I.F("fmt %s", x), log.E.Ln("a", "b"), log.T.C(func() string {...}),
// backed by zerolog.
package log

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Level is a single logging level object exposing the three call-site
// forms used throughout this repository.
type Level struct {
	z    zerolog.Logger
	name string
}

var base zerolog.Logger

var (
	T Level
	D Level
	I Level
	W Level
	E Level
)

func init() {
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	cw.FormatLevel = func(i any) string {
		s, _ := i.(string)
		switch s {
		case "trace":
			return color.New(color.FgHiBlack).Sprint("TRC")
		case "debug":
			return color.New(color.FgCyan).Sprint("DBG")
		case "info":
			return color.New(color.FgGreen).Sprint("INF")
		case "warn":
			return color.New(color.FgYellow).Sprint("WRN")
		case "error":
			return color.New(color.FgRed).Sprint("ERR")
		default:
			return strings.ToUpper(s)
		}
	}
	base = zerolog.New(cw).With().Timestamp().Logger()
	SetLevel("info")
}

// SetLevel sets the minimum level that will be emitted, by name
// (trace, debug, info, warn, error).
func SetLevel(name string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	base = base.Level(lvl)
	T = Level{z: base, name: "trace"}
	D = Level{z: base, name: "debug"}
	I = Level{z: base, name: "info"}
	W = Level{z: base, name: "warn"}
	E = Level{z: base, name: "error"}
}

func (l Level) event() *zerolog.Event {
	switch l.name {
	case "trace":
		return l.z.Trace()
	case "debug":
		return l.z.Debug()
	case "warn":
		return l.z.Warn()
	case "error":
		return l.z.Error()
	default:
		return l.z.Info()
	}
}

// F logs a printf-style formatted message at this level.
func (l Level) F(format string, args ...any) {
	l.event().Msgf(format, args...)
}

// Ln logs its arguments space-joined at this level, like fmt.Println
// without the trailing newline.
func (l Level) Ln(args ...any) {
	l.event().Msg(sprintLn(args...))
}

// C logs the result of fn, which is only invoked if this level is
// currently enabled, avoiding the cost of building trace/debug strings
// on hot paths when logging is quiet.
func (l Level) C(fn func() string) {
	ev := l.event()
	if ev == nil {
		return
	}
	ev.Msg(fn())
}

func sprintLn(args ...any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			parts[i] = s
		} else {
			parts[i] = color.New().Sprint(a)
		}
	}
	return strings.Join(parts, " ")
}
