// ABOUTME: Tests for the login screen: field gating, submission, and the
// ABOUTME: resume-to-destination handoff after a successful sign-in.
package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeInto(m loginModel, s string) loginModel {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestLoginRequiresBothFields(t *testing.T) {
	fb := newFakeBackend(t)
	deps := testDeps(t, fb.server.URL)
	m := newLoginModel(deps, navMsg{screen: screenList}, "")

	m = typeInto(m, "user@example.com")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter}) // moves focus to password
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("expected no command with an empty password")
	}
	if m.errMsg == "" {
		t.Error("expected a required-fields message")
	}
	if len(fb.calls) != 0 {
		t.Errorf("expected zero network calls, got %v", fb.calls)
	}
}

func TestLoginSuccessResumesDestination(t *testing.T) {
	fb := newFakeBackend(t)
	deps := testDeps(t, fb.server.URL)
	next := navMsg{screen: screenEditor, postID: 7, edit: true}
	m := newLoginModel(deps, next, "Sign in to edit posts.")

	m = typeInto(m, "user@example.com")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = typeInto(m, "hunter2")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.submitting {
		t.Fatal("expected submission in flight")
	}

	done := findMsg(t, cmd, func(msg tea.Msg) bool {
		_, ok := msg.(loginDoneMsg)
		return ok
	}).(loginDoneMsg)
	if done.err != nil {
		t.Fatalf("login failed: %v", done.err)
	}

	m, cmd = m.Update(done)
	if cmd == nil {
		t.Fatal("expected resume navigation")
	}
	if nav, ok := cmd().(navMsg); !ok || nav != next {
		t.Errorf("expected resume to %+v, got %+v", next, cmd())
	}
	if !deps.Session.IsLoggedIn() {
		t.Error("expected session established")
	}
}

func TestLoginRejectionShowsServerMessage(t *testing.T) {
	fb := newFakeBackend(t)
	deps := testDeps(t, fb.server.URL)
	m := newLoginModel(deps, navMsg{screen: screenList}, "")

	m = typeInto(m, "user@example.com")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = typeInto(m, "wrong")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	done := findMsg(t, cmd, func(msg tea.Msg) bool {
		_, ok := msg.(loginDoneMsg)
		return ok
	}).(loginDoneMsg)
	if done.err == nil {
		t.Fatal("expected login error")
	}

	m, _ = m.Update(done)
	if m.errMsg != "Invalid credentials" {
		t.Errorf("expected server message surfaced, got %q", m.errMsg)
	}
	if deps.Session.IsLoggedIn() {
		t.Error("rejected login must not persist a session")
	}
}

func TestLoginInertWhileSubmitting(t *testing.T) {
	deps := testDeps(t, "http://unused.invalid")
	m := newLoginModel(deps, navMsg{screen: screenList}, "")
	m.submitting = true

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if cmd != nil {
		t.Error("expected keys ignored while submitting")
	}
	m = typeInto(m, "x")
	if m.email.Value() != "" {
		t.Error("expected input ignored while submitting")
	}
}

func TestLoginEscGoesBack(t *testing.T) {
	deps := testDeps(t, "http://unused.invalid")
	m := newLoginModel(deps, navMsg{screen: screenList}, "")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected navigation command")
	}
	if nav, ok := cmd().(navMsg); !ok || nav.screen != screenList {
		t.Errorf("expected list nav, got %+v", cmd())
	}
}
