// ABOUTME: Post list screen with offset pagination and a next-page probe.
// ABOUTME: Page and page size are client-held; every visit re-fetches.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j0chan/sesac-semi/internal/posts"
)

// pageSizeOptions are the sizes the s key cycles through.
var pageSizeOptions = []int{10, 20, 30}

type postsPageMsg struct {
	gen     int
	rows    []posts.Post
	hasNext bool
	err     error
}

type listModel struct {
	deps *Deps

	state  AsyncState
	errMsg string

	rows     []posts.Post
	cursor   int
	page     int
	pageSize int
	hasNext  bool

	gen generation
}

func newListModel(deps *Deps) listModel {
	size := deps.PageSize
	if size <= 0 {
		size = pageSizeOptions[0]
	}
	return listModel{
		deps:     deps,
		state:    StateLoading,
		page:     1,
		pageSize: size,
	}
}

// load starts a page fetch under a fresh generation token.
func (m listModel) load() (listModel, tea.Cmd) {
	m.state = StateLoading
	m.errMsg = ""

	gen := m.gen.Next()
	repo := m.deps.Posts
	page, size := m.page, m.pageSize
	return m, func() tea.Msg {
		rows, hasNext, err := repo.Page(context.Background(), page, size)
		return postsPageMsg{gen: gen, rows: rows, hasNext: hasNext, err: err}
	}
}

func (m listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	switch msg := msg.(type) {
	case postsPageMsg:
		if !m.gen.Current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.state = StateError
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.rows = msg.rows
		m.hasNext = msg.hasNext
		m.state = StateSuccess
		if m.cursor >= len(m.rows) {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m listModel) handleKey(msg tea.KeyMsg) (listModel, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit

	case "r":
		if m.state == StateError {
			return m.load()
		}

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "enter":
		if m.state == StateSuccess && len(m.rows) > 0 {
			id := m.rows[m.cursor].ID
			return m, func() tea.Msg { return navMsg{screen: screenDetail, postID: id} }
		}

	case "n", "right":
		if m.state != StateLoading && m.hasNext {
			m.page++
			return m.load()
		}

	case "p", "left":
		if m.state != StateLoading && m.page > 1 {
			m.page--
			return m.load()
		}

	case "s":
		if m.state != StateLoading {
			m.pageSize = nextPageSize(m.pageSize)
			// New size means the current rows are mislabeled; drop them now.
			m.page = 1
			m.rows = nil
			m.hasNext = false
			m.cursor = 0
			return m.load()
		}

	case "c":
		return m, func() tea.Msg {
			return navMsg{screen: screenEditor, notice: "Sign in to write a new post."}
		}
	}
	return m, nil
}

// nextPageSize cycles through pageSizeOptions.
func nextPageSize(current int) int {
	for i, size := range pageSizeOptions {
		if size == current {
			return pageSizeOptions[(i+1)%len(pageSizeOptions)]
		}
	}
	return pageSizeOptions[0]
}

// excerpt collapses whitespace and trims content for the list card. The cut
// lands on a rune boundary so multi-byte content stays valid UTF-8.
func excerpt(content string, max int) string {
	text := strings.Join(strings.Fields(content), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func (m listModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Posts"))
	b.WriteString(subtleStyle.Render(fmt.Sprintf("  page %d · %d per page", m.page, m.pageSize)))
	b.WriteString("\n\n")

	switch m.state {
	case StateLoading:
		b.WriteString(subtleStyle.Render("Loading posts..."))
		b.WriteString("\n")

	case StateError:
		b.WriteString(errorStyle.Render("Could not load posts: " + m.errMsg))
		b.WriteString("\n\n")
		b.WriteString(subtleStyle.Render("[r]etry  [q]uit"))
		b.WriteString("\n")

	case StateSuccess:
		if len(m.rows) == 0 {
			if m.page == 1 {
				b.WriteString(subtleStyle.Render("No posts yet. Press c to write the first one."))
			} else {
				b.WriteString(subtleStyle.Render("Nothing on this page. Press p for the previous page."))
			}
			b.WriteString("\n")
		}
		for i, post := range m.rows {
			marker := "  "
			line := fmt.Sprintf("#%d %s", post.ID, post.Title)
			if i == m.cursor {
				marker = cursorStyle.Render("> ")
				line = cursorStyle.Render(line)
			}
			b.WriteString(marker)
			b.WriteString(line)
			if post.ImageKey != nil {
				b.WriteString(" " + badgeStyle.Render("[image]"))
			}
			b.WriteString("\n")
			b.WriteString("    " + subtleStyle.Render(excerpt(post.Content, 72)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render("enter view · c new · n/p page · s size · q quit"))
		b.WriteString("\n")
	}
	return b.String()
}
