package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

var (
	// ErrCancelled is returned when the operator aborts the prompt.
	ErrCancelled = errors.New("input cancelled")
	// ErrNoInput is returned when input ends before any line is read.
	ErrNoInput = errors.New("no input")
)

// PromptModel is a single-line Bubbletea text prompt.
type PromptModel struct {
	title     string
	input     textinput.Model
	done      bool
	cancelled bool
}

// NewPromptModel creates a focused prompt with the given title.
func NewPromptModel(title, placeholder string) PromptModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.PromptStyle = promptStyle
	ti.TextStyle = inputTextStyle
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	return PromptModel{title: title, input: ti}
}

// Init starts the cursor blink.
func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses. Enter submits, Esc and Ctrl+C cancel.
func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt.
func (m PromptModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(FormatKey("enter", "submit") + " • " + FormatKey("esc", "cancel")))
	b.WriteString("\n")
	return b.String()
}

// Value returns the entered text.
func (m PromptModel) Value() string {
	return m.input.Value()
}

// Submitted reports whether the operator pressed Enter.
func (m PromptModel) Submitted() bool {
	return m.done
}

// Cancelled reports whether the operator aborted the prompt.
func (m PromptModel) Cancelled() bool {
	return m.cancelled
}

// ReadLine asks for one line of input. On a terminal it runs a Bubbletea
// prompt; otherwise it prints the title and reads one line from in.
func ReadLine(ctx context.Context, title string, in io.Reader, out io.Writer) (string, error) {
	if isTerminal(in) {
		return runPrompt(ctx, title, in, out)
	}
	return readPlain(title, in, out)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runPrompt(ctx context.Context, title string, in io.Reader, out io.Writer) (string, error) {
	p := tea.NewProgram(
		NewPromptModel(title, "publisher id or name"),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	m, ok := final.(PromptModel)
	if !ok || m.Cancelled() {
		return "", ErrCancelled
	}
	return m.Value(), nil
}

func readPlain(title string, in io.Reader, out io.Writer) (string, error) {
	if title != "" {
		_, _ = fmt.Fprint(out, title+" ")
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", ErrNoInput
	}
	return strings.TrimRight(line, "\r\n"), nil
}
