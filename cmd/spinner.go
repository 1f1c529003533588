package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type loadDoneMsg[T any] struct {
	value T
	err   error
}

type loadSpinnerModel[T any] struct {
	spinner spinner.Model
	label   string
	load    tea.Cmd
	value   T
	err     error
	done    bool
}

func newLoadSpinnerModel[T any](label string, load tea.Cmd) loadSpinnerModel[T] {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return loadSpinnerModel[T]{
		spinner: s,
		label:   label,
		load:    load,
	}
}

func (m loadSpinnerModel[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

func (m loadSpinnerModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case loadDoneMsg[T]:
		m.done = true
		m.value, m.err = msg.value, msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m loadSpinnerModel[T]) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// loadWithSpinner shows label on output while load runs. A canceled context
// ends the spinner and returns the context error.
func loadWithSpinner[T any](ctx context.Context, output io.Writer, label string, load func(context.Context) (T, error)) (T, error) {
	var zero T

	loadCmd := func() tea.Msg {
		value, err := load(ctx)
		return loadDoneMsg[T]{value: value, err: err}
	}

	p := tea.NewProgram(
		newLoadSpinnerModel[T](label, loadCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, err
	}

	result, ok := finalModel.(loadSpinnerModel[T])
	if !ok {
		return zero, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}
	if !result.done {
		return zero, fmt.Errorf("%s: interrupted", label)
	}

	return result.value, result.err
}
