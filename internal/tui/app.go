package tui

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
	opts    []tea.ProgramOption
}

// New creates a new TUI application
func New(opts Options, programOpts ...tea.ProgramOption) *App {
	return &App{
		model: NewModel(opts),
		opts:  programOpts,
	}
}

// Run starts the TUI application and returns the final model.
func (a *App) Run() (Model, error) {
	opts := append([]tea.ProgramOption{tea.WithAltScreen()}, a.opts...)
	a.program = tea.NewProgram(a.model, opts...)

	// Quit cleanly on termination signals so the terminal is restored
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		if _, ok := <-sigChan; ok && a.program != nil {
			a.program.Send(tea.Quit())
		}
	}()

	final, err := a.program.Run()

	// Clean up signal handler
	signal.Stop(sigChan)
	close(sigChan)

	if m, ok := final.(Model); ok {
		return m, err
	}
	return a.model, err
}
