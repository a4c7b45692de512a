// ABOUTME: Login screen collecting email and password.
// ABOUTME: Carries the destination that triggered the login so it resumes.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type loginDoneMsg struct {
	err error
}

type loginModel struct {
	deps *Deps

	email    textinput.Model
	password textinput.Model
	focus    int

	notice     string
	errMsg     string
	submitting bool

	next navMsg
}

func newLoginModel(deps *Deps, next navMsg, notice string) loginModel {
	email := textinput.New()
	email.Placeholder = "name@company.com"
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.Width = 40

	return loginModel{
		deps:     deps,
		email:    email,
		password: password,
		notice:   notice,
		next:     next,
	}
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		next := m.next
		return m, func() tea.Msg { return next }

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyEscape:
			return m, navToList

		case tea.KeyTab, tea.KeyShiftTab:
			return m.toggleFocus()

		case tea.KeyEnter:
			if m.focus == 0 {
				return m.toggleFocus()
			}
			return m.submit()
		}

		var cmd tea.Cmd
		if m.focus == 0 {
			m.email, cmd = m.email.Update(msg)
		} else {
			m.password, cmd = m.password.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m loginModel) toggleFocus() (loginModel, tea.Cmd) {
	if m.focus == 0 {
		m.focus = 1
		m.email.Blur()
		m.password.Focus()
	} else {
		m.focus = 0
		m.password.Blur()
		m.email.Focus()
	}
	return m, textinput.Blink
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.errMsg = "email and password are required"
		return m, nil
	}

	m.errMsg = ""
	m.submitting = true
	svc := m.deps.Session
	return m, func() tea.Msg {
		return loginDoneMsg{err: svc.Login(context.Background(), email, password)}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in"))
	b.WriteString("\n\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n\n")
	}
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(subtleStyle.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if m.submitting {
		b.WriteString(subtleStyle.Render("Signing in..."))
	} else {
		b.WriteString(subtleStyle.Render("enter sign in · esc back"))
	}
	b.WriteString("\n")
	return b.String()
}
