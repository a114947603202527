// Package msg defines the message types used by the TUI's Bubbletea event loop.
//
// This package contains the [tea.Msg] types the presenter can receive (task
// results, clipboard outcomes, feedback resets) and the command factories that
// produce them. Keeping them apart from the model means the request and
// clipboard plumbing can be tested without a running program.
package msg
