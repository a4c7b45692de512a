// ABOUTME: Root bubbletea model for the board TUI.
// ABOUTME: Routes between list, detail, editor, and login screens.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j0chan/sesac-semi/internal/posts"
	"github.com/j0chan/sesac-semi/internal/session"
	"github.com/j0chan/sesac-semi/internal/uploads"
)

// Deps carries the services every screen works against.
type Deps struct {
	Session  *session.Service
	Posts    *posts.Repository
	Uploads  *uploads.Service
	PageSize int
}

type screen int

const (
	screenList screen = iota
	screenDetail
	screenEditor
	screenLogin
)

// navMsg switches the active screen. Writing screens are gated on a live
// session: an unauthenticated editor or delete intent detours through the
// login screen, carrying the original destination so it resumes afterwards.
type navMsg struct {
	screen screen
	postID int
	edit   bool
	notice string
}

func navToList() tea.Msg {
	return navMsg{screen: screenList}
}

// Model is the root TUI model.
type Model struct {
	deps *Deps

	screen screen
	list   listModel
	detail detailModel
	editor editorModel
	login  loginModel

	quitting bool
}

// NewModel creates the root model opening on the post list.
func NewModel(deps *Deps) Model {
	return Model{
		deps:   deps,
		screen: screenList,
		list:   newListModel(deps),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmd tea.Cmd
	m.list, cmd = m.list.load()
	return cmd
}

// needsLogin reports whether a navigation target requires authentication
// before it may render.
func needsLogin(msg navMsg) bool {
	return msg.screen == screenEditor
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}

	case navMsg:
		return m.navigate(msg)
	}

	return m.delegate(msg)
}

// navigate applies a screen switch, detouring through login when the target
// needs a session the user does not have.
func (m Model) navigate(msg navMsg) (tea.Model, tea.Cmd) {
	if needsLogin(msg) && !m.deps.Session.IsLoggedIn() {
		m.screen = screenLogin
		m.login = newLoginModel(m.deps, msg, msg.notice)
		return m, m.login.Init()
	}

	var cmd tea.Cmd
	switch msg.screen {
	case screenList:
		m.screen = screenList
		m.list = newListModel(m.deps)
		m.list, cmd = m.list.load()
	case screenDetail:
		m.screen = screenDetail
		m.detail = newDetailModel(m.deps, msg.postID)
		m.detail, cmd = m.detail.load()
	case screenEditor:
		m.screen = screenEditor
		m.editor, cmd = newEditorModel(m.deps, msg)
	case screenLogin:
		m.screen = screenLogin
		next := navMsg{screen: screenList}
		if msg.postID != 0 {
			next = navMsg{screen: screenDetail, postID: msg.postID}
		}
		m.login = newLoginModel(m.deps, next, msg.notice)
		cmd = m.login.Init()
	}
	return m, cmd
}

// delegate forwards a message to the active screen only. Async results
// addressed to a screen the user already left are dropped here, which is the
// same discard the generation tokens apply within a screen.
func (m Model) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenList:
		m.list, cmd = m.list.Update(msg)
	case screenDetail:
		m.detail, cmd = m.detail.Update(msg)
	case screenEditor:
		m.editor, cmd = m.editor.Update(msg)
	case screenLogin:
		m.login, cmd = m.login.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(brandStyle.Render("  BOARD"))
	if identity := m.deps.Session.CurrentIdentity(); identity != "" {
		b.WriteString(subtleStyle.Render("  @" + identity))
	} else if !m.deps.Session.IsLoggedIn() {
		b.WriteString(subtleStyle.Render("  (signed out)"))
	}
	b.WriteString("\n\n")

	switch m.screen {
	case screenList:
		b.WriteString(m.list.View())
	case screenDetail:
		b.WriteString(m.detail.View())
	case screenEditor:
		b.WriteString(m.editor.View())
	case screenLogin:
		b.WriteString(m.login.View())
	}
	return b.String()
}
