// Package logger provides structured logging for unsplashfetch.
//
// It wraps zerolog behind a small Logger interface so that packages can take
// a Logger in their constructors and tests can substitute a TestLogger.
//
// Basic Usage:
//
//	log, err := logger.Initialize(&cfg.Logging, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	log.WithField("count", 5).Info("Starting fetch")
//
// Console output goes to stderr so that stdout carries only the fetch
// results. Setting LoggingConfig.File additionally appends to that file.
package logger
