// Package logging builds the logrus logger shared by the command line and
// desktop front ends.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// Config selects the log level and output format.
type Config struct {
	Level   string `yaml:"level" json:"level" env:"LEVEL"`
	Format  string `yaml:"format" json:"format" env:"FORMAT"` // text or json
	NoColor bool   `yaml:"no_color" json:"no_color" env:"NO_COLOR"`
}

// DefaultConfig logs at info level as coloured text.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text"}
}

// stderrIsTerminal reports whether stderr is an interactive console.
var stderrIsTerminal = func() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// New returns a logger configured by cfg. A nil out writes to stderr
// through a colorable writer so ANSI colours also work on Windows consoles;
// colours are only used when stderr is a terminal.
func New(cfg Config, out io.Writer) (*log.Logger, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		l, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = l
	}

	var formatter log.Formatter
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		formatter = &log.TextFormatter{
			ForceColors:   out == nil && !cfg.NoColor && stderrIsTerminal(),
			DisableColors: cfg.NoColor,
			FullTimestamp: true,
		}
	case "json":
		formatter = &log.JSONFormatter{}
	default:
		return nil, fmt.Errorf("logging: unknown format %q (want text or json)", cfg.Format)
	}

	if out == nil {
		out = colorable.NewColorableStderr()
	}

	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetFormatter(formatter)
	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}
