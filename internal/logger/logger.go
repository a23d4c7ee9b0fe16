// Package logger builds the slog logger used by msictl: a text handler on
// stderr, or a JSON handler writing date-stamped files with retention.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logPrefix     = "msictl-"
	logSuffix     = ".log"
	dateLayout    = "2006-01-02"
	retentionDays = 30
)

// Options configures New.
type Options struct {
	Verbose bool      // debug level
	Quiet   bool      // errors only; wins over Verbose
	LogDir  string    // when set, log JSON to a daily file here instead of Stderr
	Stderr  io.Writer // defaults to os.Stderr
	Now     func() time.Time
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// New returns the configured logger and a func that closes any log file.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := slog.LevelWarn
	switch {
	case opts.Quiet:
		level = slog.LevelError
	case opts.Verbose:
		level = slog.LevelDebug
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if opts.LogDir == "" {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), func() error { return nil }, nil
	}

	if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
		return nil, nil, err
	}
	cleanOldLogs(opts.LogDir, now())

	filename := filepath.Join(opts.LogDir, FileName(now()))
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	// File logs keep info and above even without --verbose.
	if level > slog.LevelInfo && !opts.Quiet {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})), f.Close, nil
}

// FileName returns the log file name for day t.
func FileName(t time.Time) string {
	return logPrefix + t.Format(dateLayout) + logSuffix
}

// cleanOldLogs removes log files older than retentionDays. Best effort.
func cleanOldLogs(logDir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		// msictl-2026-01-05.log
		day, err := time.Parse(dateLayout, strings.TrimPrefix(strings.TrimSuffix(name, logSuffix), logPrefix))
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			_ = os.Remove(filepath.Join(logDir, name))
		}
	}
}
