// ABOUTME: Post detail screen with derived image resolution and delete flow.
// ABOUTME: Post body and image fetch state are tracked independently.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j0chan/sesac-semi/internal/posts"
)

type postMsg struct {
	gen  int
	post *posts.Post
	err  error
}

type imageURLMsg struct {
	gen int
	url string
	err error
}

type deleteDoneMsg struct {
	err error
}

type detailModel struct {
	deps *Deps
	id   int

	state  AsyncState
	errMsg string
	post   *posts.Post

	imgState AsyncState
	imgURL   string
	imgErr   string

	postGen generation
	imgGen  generation

	confirming bool
	deleting   bool
}

func newDetailModel(deps *Deps, id int) detailModel {
	return detailModel{deps: deps, id: id, state: StateLoading, imgState: StateIdle}
}

func (m detailModel) load() (detailModel, tea.Cmd) {
	m.state = StateLoading
	m.errMsg = ""

	gen := m.postGen.Next()
	repo := m.deps.Posts
	id := m.id
	return m, func() tea.Msg {
		post, err := repo.Get(context.Background(), id)
		return postMsg{gen: gen, post: post, err: err}
	}
}

// loadImage starts the derived read-URL fetch for the current image key. The
// generation token makes a later key change win over this fetch's result.
func (m detailModel) loadImage(key string) (detailModel, tea.Cmd) {
	m.imgState = StateLoading
	m.imgErr = ""
	m.imgURL = ""

	gen := m.imgGen.Next()
	svc := m.deps.Uploads
	return m, func() tea.Msg {
		url, err := svc.PresignGet(context.Background(), key)
		return imageURLMsg{gen: gen, url: url, err: err}
	}
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case postMsg:
		if !m.postGen.Current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.state = StateError
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.post = msg.post
		m.state = StateSuccess
		if m.post.ImageKey == nil || *m.post.ImageKey == "" {
			m.imgGen.Next()
			m.imgState = StateIdle
			m.imgURL = ""
			m.imgErr = ""
			return m, nil
		}
		return m.loadImage(*m.post.ImageKey)

	case imageURLMsg:
		if !m.imgGen.Current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.imgState = StateError
			m.imgErr = msg.err.Error()
			m.imgURL = ""
			return m, nil
		}
		m.imgURL = msg.url
		m.imgState = StateSuccess
		return m, nil

	case deleteDoneMsg:
		m.deleting = false
		if msg.err != nil {
			m.state = StateError
			m.errMsg = msg.err.Error()
			return m, nil
		}
		return m, navToList

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m detailModel) handleKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if m.deleting {
		return m, nil
	}

	if m.confirming {
		switch msg.String() {
		case "y":
			m.confirming = false
			m.deleting = true
			repo := m.deps.Posts
			id := m.id
			return m, func() tea.Msg {
				return deleteDoneMsg{err: repo.Delete(context.Background(), id)}
			}
		case "n", "esc":
			m.confirming = false
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc", "backspace":
		return m, navToList

	case "r":
		if m.state == StateError {
			return m.load()
		}

	case "e":
		if m.state == StateSuccess {
			id := m.id
			return m, func() tea.Msg {
				return navMsg{screen: screenEditor, postID: id, edit: true, notice: "Sign in to edit posts."}
			}
		}

	case "d":
		if m.state != StateSuccess {
			return m, nil
		}
		if !m.deps.Session.IsLoggedIn() {
			id := m.id
			return m, func() tea.Msg {
				return navMsg{screen: screenLogin, postID: id, notice: "Sign in to delete posts."}
			}
		}
		m.confirming = true
	}
	return m, nil
}

func (m detailModel) View() string {
	var b strings.Builder

	switch m.state {
	case StateLoading:
		b.WriteString(subtleStyle.Render(fmt.Sprintf("Loading post #%d...", m.id)))
		b.WriteString("\n")

	case StateError:
		b.WriteString(errorStyle.Render("Could not load post: " + m.errMsg))
		b.WriteString("\n\n")
		b.WriteString(subtleStyle.Render("[r]etry  [esc] back"))
		b.WriteString("\n")

	case StateSuccess:
		b.WriteString(titleStyle.Render(m.post.Title))
		b.WriteString(subtleStyle.Render(fmt.Sprintf("  #%d", m.post.ID)))
		b.WriteString("\n\n")
		b.WriteString(m.post.Content)
		b.WriteString("\n")

		switch m.imgState {
		case StateLoading:
			b.WriteString("\n" + subtleStyle.Render("Resolving attached image..."))
			b.WriteString("\n")
		case StateError:
			b.WriteString("\n" + errorStyle.Render("Attached image unavailable: "+m.imgErr))
			b.WriteString("\n")
		case StateSuccess:
			b.WriteString("\n" + badgeStyle.Render("[image] ") + m.imgURL)
			b.WriteString("\n")
		}

		b.WriteString("\n")
		switch {
		case m.deleting:
			b.WriteString(subtleStyle.Render("Deleting..."))
		case m.confirming:
			b.WriteString(noticeStyle.Render("Delete this post? [y]es [n]o"))
		default:
			b.WriteString(subtleStyle.Render("e edit · d delete · esc back"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
