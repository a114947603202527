// Package logging provides structured logging for prtasks.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation. Each extraction request carries a request ID, and
// the strategy that produced a message can be attached as well, so a single
// run can be followed through the log after the fact.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("extraction complete", "task_ids", 3, "duration_ms", 12)
//
// # Context Propagation
//
//	reqLogger := logger.WithRequest("0b4e...").WithPage("https://github.com/o/r/pull/7")
//	reqLogger.WithStrategy("commit-link").Debug("message matched", "task_id", "ABC-1")
//
// # Terminal UI
//
// The presenter owns the terminal, so it must never log to stderr. When no
// log directory is configured the commands hand the TUI a [NopLogger].
//
// # Configuration
//
//	logging:
//	  enabled: true
//	  level: debug
//	  dir: ~/.cache/prtasks
package logging
