// Package logging provides the leveled, structured logger used across every
// votechain process (tracker and peer). It wraps zerolog the way the
// upstream node wraps it for its services, so every package logs through the
// same small interface instead of reaching for the standard log package.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorBlue    = 34
	colorWhite   = 37
	colorBoldOff = 0
)

// Logger is the leveled logging surface every votechain package depends on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	// With returns a child logger tagged with an extra field, e.g.
	// logger.With("peer", peerID).Infof("registered")
	With(key, value string) Logger
}

// ZLogger is the default Logger backed by zerolog.
type ZLogger struct {
	zl      zerolog.Logger
	service string
}

// New returns a pretty, color-coded console logger tagged with service.
// logLevel is one of debug/info/warn/error/fatal; anything else defaults to
// info.
func New(service string, logLevel string) *ZLogger {
	if service == "" {
		service = "votechain"
	}

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	output.FormatTimestamp = func(i interface{}) string {
		parsed, err := time.Parse(time.RFC3339, fmt.Sprintf("%s", i))
		if err != nil {
			return fmt.Sprintf("%s", i)
		}
		return parsed.Format("15:04:05")
	}
	output.FormatLevel = func(i interface{}) string {
		l := strings.ToUpper(fmt.Sprintf("%-5s", i))
		switch i {
		case "debug":
			l = colorize(l, colorBlue)
		case "info":
			l = colorize(l, colorGreen)
		case "warn":
			l = colorize(l, colorYellow)
		case "error", "fatal", "panic":
			l = colorize(l, colorRed)
		default:
			l = colorize(l, colorWhite)
		}
		return fmt.Sprintf("| %s|", l)
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("| %-8s| %s", service, i)
	}
	output.FormatCaller = func(i interface{}) string {
		c, _ := i.(string)
		if c == "" {
			return c
		}
		return filepath.Base(c)
	}

	zl := zerolog.New(output).With().Timestamp().Logger()
	setLevel(&zl, logLevel)

	return &ZLogger{zl: zl, service: service}
}

func setLevel(zl *zerolog.Logger, level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		*zl = zl.Level(zerolog.DebugLevel)
	case "WARN":
		*zl = zl.Level(zerolog.WarnLevel)
	case "ERROR":
		*zl = zl.Level(zerolog.ErrorLevel)
	case "FATAL":
		*zl = zl.Level(zerolog.FatalLevel)
	default:
		*zl = zl.Level(zerolog.InfoLevel)
	}
}

func (z *ZLogger) Debugf(format string, args ...interface{}) { z.zl.Debug().Msgf(format, args...) }
func (z *ZLogger) Infof(format string, args ...interface{})  { z.zl.Info().Msgf(format, args...) }
func (z *ZLogger) Warnf(format string, args ...interface{})  { z.zl.Warn().Msgf(format, args...) }
func (z *ZLogger) Errorf(format string, args ...interface{}) { z.zl.Error().Msgf(format, args...) }
func (z *ZLogger) Fatalf(format string, args ...interface{}) { z.zl.Fatal().Msgf(format, args...) }

func (z *ZLogger) With(key, value string) Logger {
	return &ZLogger{zl: z.zl.With().Str(key, value).Logger(), service: z.service}
}

func colorize(s string, c int) string {
	if os.Getenv("NO_COLOR") != "" || c == colorBoldOff {
		return s
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", c, s)
}
