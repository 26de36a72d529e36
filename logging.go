package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cansyan/ribbon/config"
)

// newLogger returns a logger writing to the configured file. The terminal
// belongs to the UI, so without a file nothing is logged.
func newLogger(s *config.Settings) (*log.Logger, io.Closer, error) {
	if s.LogFile == "" {
		return log.New(io.Discard), nopCloser{}, nil
	}
	level, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	lj := &lumberjack.Logger{
		Filename:   s.LogFile,
		MaxSize:    s.LogMaxSizeMB,
		MaxBackups: s.LogMaxBackups,
		MaxAge:     28,
	}
	l := log.NewWithOptions(lj, log.Options{
		Level:           level,
		Prefix:          config.AppName,
		ReportTimestamp: true,
	})
	l.SetStyles(logStyles())
	return l, lj, nil
}

func logStyles() *log.Styles {
	styles := log.DefaultStyles()
	level := func(label, color string) lipgloss.Style {
		return lipgloss.NewStyle().SetString(label).Bold(true).Foreground(lipgloss.Color(color))
	}
	styles.Levels[log.DebugLevel] = level("DEBUG", "63")
	styles.Levels[log.InfoLevel] = level("INFO ", "42")
	styles.Levels[log.WarnLevel] = level("WARN ", "214")
	styles.Levels[log.ErrorLevel] = level("ERROR", "196")
	styles.Prefix = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	styles.Key = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	return styles
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
