// ABOUTME: Interactive TUI wizard for connecting to a board backend.
// ABOUTME: Single-step bubbletea model collecting and validating the API URL.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultBaseURL is the default backend endpoint for a local deployment.
const DefaultBaseURL = "http://localhost:8000"

// SetupStep represents the current wizard step.
type SetupStep int

const (
	StepBaseURL SetupStep = iota
	StepValidating
	StepDone
	StepFailed
)

// setupResultMsg carries the result of an async validation attempt.
type setupResultMsg struct {
	err error
}

// ValidateFn is the function signature for connection validation.
type ValidateFn func(ctx context.Context, baseURL string) error

// cancelHolder shares a cancel function across bubbletea model copies.
// This MUST be stored as a pointer field on SetupModel so that value-receiver
// methods (required by tea.Model) can store the cancel func and have it
// visible to all copies of the model.
type cancelHolder struct {
	cancel context.CancelFunc
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step          SetupStep
	input         textinput.Model
	spinner       spinner.Model
	validateFn    ValidateFn
	cancelCtx     *cancelHolder
	validationErr error
	quitting      bool
}

// NewSetupModel creates a new setup wizard model, pre-filling with the
// existing configured URL.
func NewSetupModel(baseURL string) SetupModel {
	input := textinput.New()
	input.Placeholder = DefaultBaseURL
	input.Focus()
	input.Width = 50
	if baseURL != "" {
		input.SetValue(baseURL)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return SetupModel{
		step:       StepBaseURL,
		input:      input,
		spinner:    s,
		validateFn: ValidateConnection,
		cancelCtx:  &cancelHolder{},
	}
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			if m.cancelCtx.cancel != nil {
				m.cancelCtx.cancel()
			}
			return m, tea.Quit
		}

		switch m.step {
		case StepBaseURL:
			return m.updateInput(msg)
		case StepFailed:
			return m.updateFailed(msg)
		}

	case setupResultMsg:
		m.cancelCtx.cancel = nil
		if msg.err == nil {
			m.step = StepDone
			return m, tea.Quit
		}
		m.validationErr = msg.err
		m.step = StepFailed
		return m, nil

	case spinner.TickMsg:
		if m.step == StepValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m SetupModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		// Apply default URL if empty, and normalize trailing slashes
		val := m.input.Value()
		if val == "" {
			m.input.SetValue(DefaultBaseURL)
		} else {
			m.input.SetValue(strings.TrimRight(val, "/"))
		}

		m.input.Blur()
		m.step = StepValidating
		return m, tea.Batch(m.startValidation(), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m SetupModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes {
		switch msg.Runes[0] {
		case 'r':
			m.step = StepValidating
			m.validationErr = nil
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		case 'e':
			m.step = StepBaseURL
			m.validationErr = nil
			m.input.Focus()
			return m, textinput.Blink
		case 's':
			m.step = StepDone
			return m, tea.Quit
		case 'q':
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SetupModel) startValidation() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	baseURL := m.input.Value()
	fn := m.validateFn
	return func() tea.Msg {
		return setupResultMsg{err: fn(ctx, baseURL)}
	}
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("  BOARD"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Connect to your board backend.\n\n")

	switch m.step {
	case StepBaseURL:
		b.WriteString(subtleStyle.Render("API base URL"))
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render("(press Enter for default)"))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")

	case StepValidating:
		b.WriteString(fmt.Sprintf("  API URL: %s\n\n", m.input.Value()))
		b.WriteString(m.spinner.View())
		b.WriteString(" Validating connection...")
		b.WriteString("\n")

	case StepDone:
		b.WriteString(successStyle.Render("✓ Connected!"))
		b.WriteString("\n")

	case StepFailed:
		errMsg := "unknown error"
		if m.validationErr != nil {
			errMsg = m.validationErr.Error()
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Validation failed: %s", errMsg)))
		b.WriteString("\n\n")
		b.WriteString(subtleStyle.Render("[r]etry  [e]dit URL  [s]ave anyway  [q]uit"))
		b.WriteString("\n")
	}

	return b.String()
}

// Result returns the entered base URL.
func (m SetupModel) Result() string {
	return m.input.Value()
}

// ShouldSave returns true if the wizard completed (via validation success or
// "save anyway") and the user did not cancel with Ctrl+C, Escape, or 'q'.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
