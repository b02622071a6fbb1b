// Package tui picks how the quick-dial screen is presented: the interactive
// Bubble Tea dashboard on a terminal, or a one-shot plain text listing.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/quickdial/internal/card"
	"github.com/smileynet/quickdial/internal/dashboard"
)

// Display presents the quick-dial screen until the user is done.
type Display interface {
	Run(ctx context.Context) error
}

// DisplayOptions configures display creation.
type DisplayOptions struct {
	Writer     io.Writer       // Output destination (default: os.Stdout).
	Input      io.Reader       // Key input for the TUI (default: os.Stdin).
	ForcePlain bool            // Force plain text even if TTY.
	AltScreen  bool            // Run the TUI in the alternate screen buffer.
	Model      dashboard.Model // Interactive model; its cards also feed the plain display.
	Chrome     card.Chrome     // Header and footer text for the plain display.
}

// NewDisplay returns a TUI display when the writer is a TTY, or a plain text
// display otherwise. ForcePlain overrides TTY detection.
func NewDisplay(opts DisplayOptions) Display {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	if opts.ForcePlain || !isTTY(opts.Writer) {
		return &PlainDisplay{w: opts.Writer, chrome: opts.Chrome, cards: opts.Model.Cards}
	}

	return &TUIDisplay{
		model:     opts.Model,
		chrome:    opts.Chrome,
		w:         opts.Writer,
		in:        opts.Input,
		altScreen: opts.AltScreen,
	}
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PlainDisplay renders the cards once as text and returns.
type PlainDisplay struct {
	w      io.Writer
	chrome card.Chrome
	cards  func() []card.View
}

// Run writes the card listing.
func (d *PlainDisplay) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := card.RenderPlain(d.w, d.chrome, d.cards()); err != nil {
		return fmt.Errorf("tui: writing listing: %w", err)
	}
	return nil
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// TUIDisplay runs the interactive dashboard.
// Falls back to PlainDisplay if the TUI program fails to start.
type TUIDisplay struct {
	model     dashboard.Model
	chrome    card.Chrome
	w         io.Writer
	in        io.Reader
	altScreen bool

	newProgram func(tea.Model, ...tea.ProgramOption) teaRunner
}

// Run starts the Bubble Tea program and blocks until it exits. Cancelling ctx
// stops the program. A storage failure that stopped the dashboard is returned.
func (d *TUIDisplay) Run(ctx context.Context) error {
	opts := []tea.ProgramOption{tea.WithOutput(d.w), tea.WithContext(ctx)}
	if d.in != nil {
		opts = append(opts, tea.WithInput(d.in))
	}
	if d.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	newProgram := d.newProgram
	if newProgram == nil {
		newProgram = func(m tea.Model, opts ...tea.ProgramOption) teaRunner {
			return tea.NewProgram(m, opts...)
		}
	}

	final, err := newProgram(d.model, opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return fmt.Errorf("tui: %w", err)
		}
		plain := &PlainDisplay{w: d.w, chrome: d.chrome, cards: d.model.Cards}
		return plain.Run(ctx)
	}
	if m, ok := final.(dashboard.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}
