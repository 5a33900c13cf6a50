// Package logging builds the zap logger used by the commands.
//
// Info messages go to stdout, warnings and errors to stderr, and, when a log
// file is configured, every level goes to the file as well.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface accepted by the pipeline.
// Messages are printf-style format strings.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// New creates the sugared logger. logFile may be nil.
func New(stdout io.Writer, stderr io.Writer, logFile io.Writer, verbose bool) *zap.SugaredLogger {
	var cores []zapcore.Core

	// Log to file
	if logFile != nil {
		cores = append(cores, getFileCore(logFile))
	}

	// Log to stdout
	cores = append(cores, getStdoutCore(stdout, verbose))

	// Log to stderr
	cores = append(cores, getStderrCore(stderr, verbose))

	return zap.New(zapcore.NewTee(cores...)).Sugar()
}

// OpenFile opens the log file for appending, creating its directory.
func OpenFile(fsys afero.Fs, path string) (afero.File, error) {
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := fsys.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

func getFileCore(logFile io.Writer) zapcore.Core {
	// Log all
	fileLevels := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return true })

	// Log time, level, msg
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: "\t",
	})
	return zapcore.NewCore(encoder, zapcore.AddSync(logFile), fileLevels)
}

func getStdoutCore(stdout io.Writer, verbose bool) zapcore.Core {
	consoleLevels := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		// Log debug, info -> if verbose output enabled
		if verbose {
			return l == zapcore.DebugLevel || l == zapcore.InfoLevel
		}

		// Log info only
		return l == zapcore.InfoLevel
	})

	return zapcore.NewCore(consoleEncoder(verbose), zapcore.AddSync(stdout), consoleLevels)
}

func getStderrCore(stderr io.Writer, verbose bool) zapcore.Core {
	return zapcore.NewCore(consoleEncoder(verbose), zapcore.AddSync(stderr), zapcore.WarnLevel)
}

// consoleEncoder prefixes messages with the level only when verbose.
func consoleEncoder(verbose bool) zapcore.Encoder {
	levelKey := ""
	if verbose {
		levelKey = "level"
	}

	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         levelKey,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: "\t",
	})
}

// =============================================================================
// LOGGER ADAPTERS
// =============================================================================

type sugared struct {
	logger *zap.SugaredLogger
}

// Wrap adapts a sugared logger to Logger.
func Wrap(logger *zap.SugaredLogger) Logger {
	return &sugared{logger: logger}
}

func (l *sugared) Debug(msg string, args ...interface{}) { l.logger.Debugf(msg, args...) }
func (l *sugared) Info(msg string, args ...interface{})  { l.logger.Infof(msg, args...) }
func (l *sugared) Warn(msg string, args ...interface{})  { l.logger.Warnf(msg, args...) }
func (l *sugared) Error(msg string, args ...interface{}) { l.logger.Errorf(msg, args...) }

// Nop returns a logger that discards everything.
func Nop() Logger {
	return Wrap(zap.NewNop().Sugar())
}
