// Package clipboard copies text to the system clipboard, falling back to an
// OSC 52 terminal escape sequence when no native clipboard is reachable (for
// example over SSH).
package clipboard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"

	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/logging"
)

// Writer copies text somewhere the user can paste it from.
type Writer interface {
	Copy(text string) error
}

// JoinIDs formats task IDs the way the copy action places them on the
// clipboard: one per line.
func JoinIDs(ids []string) string {
	return strings.Join(ids, "\n")
}

// System is the default Writer.
type System struct {
	// terminal receives the OSC 52 fallback sequence; nil disables it.
	terminal io.Writer
	getenv   func(string) string
	native   func(string) error
	logger   *logging.Logger
}

// New creates a System writer. terminal is where the escape sequence goes
// when the native clipboard fails, usually os.Stderr so it bypasses any
// redirected stdout.
func New(terminal io.Writer, logger *logging.Logger) *System {
	if logger == nil {
		logger = logging.NopLogger()
	}
	native := clipboard.WriteAll
	if clipboard.Unsupported {
		native = nil
	}
	return &System{
		terminal: terminal,
		getenv:   os.Getenv,
		native:   native,
		logger:   logger,
	}
}

// Copy places text on the clipboard.
func (s *System) Copy(text string) error {
	if s.native != nil {
		err := s.native(text)
		if err == nil {
			return nil
		}
		s.logger.Debug("native clipboard failed, trying OSC 52", "error", err.Error())
	}

	if s.terminal == nil {
		return errors.ErrClipboardUnavailable
	}

	seq := osc52.New(text)
	switch {
	case s.getenv("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(s.getenv("TERM"), "screen"):
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(s.terminal); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrClipboardUnavailable, err)
	}
	return nil
}
