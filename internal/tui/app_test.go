package tui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestApp_RunQuitsOnKey(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r := &fakeRequester{res: resultOf("ABC-1 change")}
	app := New(Options{Requester: r},
		tea.WithContext(ctx),
		tea.WithInput(strings.NewReader("q")),
		tea.WithOutput(io.Discard),
	)

	final, err := app.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !final.quitting {
		t.Error("final model did not record the quit")
	}
}
