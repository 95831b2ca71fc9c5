// Package logger provides the structured logging used across szepaper.
//
// It wraps zerolog behind a small Logger interface with field helpers, a
// process-wide logger set up by Initialize, and two test doubles: NewNopLogger,
// which discards everything, and NewTestLogger, which records messages.
//
// Basic Usage:
//
//	import "szepaper/pkg/logger"
//
//	err := logger.Initialize(&config.LoggingConfig{Level: "info"})
//
//	log := logger.GetLogger()
//	log.WithField("user", "reader").Info("Logging into portal")
//	log.WithError(err).Error("Download failed")
//
// Console output goes to stderr and is coloured only when stderr is a
// terminal. When LoggingConfig.File is set, entries are also appended to that
// file.
package logger
