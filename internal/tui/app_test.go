// ABOUTME: Tests for the root model: screen routing, login gating, and the
// ABOUTME: drop of async results addressed to an abandoned screen.
package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j0chan/sesac-semi/internal/posts"
)

func TestAppOpensOnList(t *testing.T) {
	deps := testDeps(t, "http://unused.invalid")
	m := NewModel(deps)
	if m.screen != screenList {
		t.Fatalf("expected list screen, got %d", m.screen)
	}
	if m.Init() == nil {
		t.Error("expected initial load command")
	}
}

func TestAppEditorGatedOnLogin(t *testing.T) {
	deps := testDeps(t, "http://unused.invalid")
	m := NewModel(deps)

	next, _ := m.Update(navMsg{screen: screenEditor, notice: "Sign in to create posts."})
	got := next.(Model)
	if got.screen != screenLogin {
		t.Fatalf("expected login detour, got screen %d", got.screen)
	}
	if got.login.next.screen != screenEditor {
		t.Error("expected original destination carried for resume")
	}
	if !strings.Contains(got.View(), "Sign in to create posts.") {
		t.Error("expected notice rendered")
	}
}

func TestAppEditorOpensWhenLoggedIn(t *testing.T) {
	fb := newFakeBackend(t)
	deps := testDeps(t, fb.server.URL)
	seedSession(t, deps)

	m := NewModel(deps)
	next, _ := m.Update(navMsg{screen: screenEditor})
	if got := next.(Model); got.screen != screenEditor {
		t.Fatalf("expected editor, got screen %d", got.screen)
	}
}

func TestAppLoginDetourFromDetailResumesDetail(t *testing.T) {
	deps := testDeps(t, "http://unused.invalid")
	m := NewModel(deps)

	next, _ := m.Update(navMsg{screen: screenLogin, postID: 9, notice: "Sign in to delete posts."})
	got := next.(Model)
	if got.screen != screenLogin {
		t.Fatalf("expected login screen, got %d", got.screen)
	}
	if got.login.next.screen != screenDetail || got.login.next.postID != 9 {
		t.Errorf("expected resume to detail 9, got %+v", got.login.next)
	}
}

func TestAppDropsResultsForAbandonedScreen(t *testing.T) {
	deps := testDeps(t, "http://unused.invalid")
	m := NewModel(deps)

	// Leave the list for the detail screen, then deliver a late list result.
	next, _ := m.Update(navMsg{screen: screenDetail, postID: 1})
	got := next.(Model)
	next, _ = got.Update(postsPageMsg{gen: 1, rows: []posts.Post{{ID: 1, Title: "late"}}})
	got = next.(Model)

	if got.list.state == StateSuccess {
		t.Error("late list result must not reach the abandoned screen")
	}
	if got.screen != screenDetail {
		t.Error("expected detail screen still active")
	}
}

func TestAppIgnoresResize(t *testing.T) {
	deps := testDeps(t, "http://unused.invalid")
	m := NewModel(deps)

	next, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if cmd != nil {
		t.Error("expected no command for a resize")
	}
	if got := next.(Model); got.screen != screenList {
		t.Errorf("expected screen unchanged, got %d", got.screen)
	}
}

func TestAppCtrlCQuits(t *testing.T) {
	deps := testDeps(t, "http://unused.invalid")
	m := NewModel(deps)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.(Model).View() != "" {
		t.Error("expected empty view while quitting")
	}
}

func TestAppHeaderShowsIdentity(t *testing.T) {
	fb := newFakeBackend(t)
	deps := testDeps(t, fb.server.URL)
	m := NewModel(deps)

	if !strings.Contains(m.View(), "(signed out)") {
		t.Error("expected signed-out marker")
	}

	seedSession(t, deps)
	if !strings.Contains(m.View(), "@user-1") {
		t.Errorf("expected identity in header, got %q", m.View())
	}
}
