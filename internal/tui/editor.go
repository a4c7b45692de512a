// ABOUTME: Post editor screen: form fields, image staging, upload, and save.
// ABOUTME: A staged file resolves to an image key before the single write call.
package tui

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j0chan/sesac-semi/internal/posts"
)

const (
	focusTitle = iota
	focusContent
)

type editorPostMsg struct {
	gen  int
	post *posts.Post
	err  error
}

type editorImageURLMsg struct {
	gen int
	url string
	err error
}

type uploadDoneMsg struct {
	key string
	err error
}

type saveDoneMsg struct {
	post *posts.Post
	err  error
}

// stagedFile is a locally selected file awaiting upload. At most one exists
// per editing session; selecting another replaces it.
type stagedFile struct {
	path        string
	contentType string
	data        []byte
}

type editorModel struct {
	deps   *Deps
	postID int
	edit   bool

	state  AsyncState
	errMsg string

	title   textinput.Model
	content textarea.Model
	focus   int

	imageKey string
	staged   *stagedFile
	fileErr  string

	imgURL string
	imgErr string
	imgGen generation

	postGen generation

	attaching bool
	pathInput textinput.Model

	uploading  bool
	submitting bool
	spinner    spinner.Model
}

// newEditorModel builds the editor. In edit mode the post must be fetched
// first, so the screen opens loading; creating opens ready.
func newEditorModel(deps *Deps, nav navMsg) (editorModel, tea.Cmd) {
	title := textinput.New()
	title.Placeholder = "Title"
	title.Width = 60
	title.Focus()

	content := textarea.New()
	content.Placeholder = "Write your post..."
	content.SetWidth(60)
	content.SetHeight(8)

	path := textinput.New()
	path.Placeholder = "/path/to/image.png"
	path.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := editorModel{
		deps:      deps,
		postID:    nav.postID,
		edit:      nav.edit,
		state:     StateSuccess,
		title:     title,
		content:   content,
		pathInput: path,
		spinner:   s,
	}

	if m.edit {
		return m.load()
	}
	return m, textinput.Blink
}

// load fetches the post being edited and populates the form on success.
func (m editorModel) load() (editorModel, tea.Cmd) {
	m.state = StateLoading
	m.errMsg = ""

	gen := m.postGen.Next()
	repo := m.deps.Posts
	id := m.postID
	return m, func() tea.Msg {
		post, err := repo.Get(context.Background(), id)
		return editorPostMsg{gen: gen, post: post, err: err}
	}
}

// loadImage fetches the display URL for the server-held image key.
func (m editorModel) loadImage(key string) (editorModel, tea.Cmd) {
	m.imgErr = ""
	m.imgURL = ""

	gen := m.imgGen.Next()
	svc := m.deps.Uploads
	return m, func() tea.Msg {
		url, err := svc.PresignGet(context.Background(), key)
		return editorImageURLMsg{gen: gen, url: url, err: err}
	}
}

// setImageKey updates the server-held key and re-derives the preview fetch.
// An empty key invalidates any outstanding fetch and clears the preview.
func (m editorModel) setImageKey(key string) (editorModel, tea.Cmd) {
	m.imageKey = key
	if key == "" {
		m.imgGen.Next()
		m.imgURL = ""
		m.imgErr = ""
		return m, nil
	}
	return m.loadImage(key)
}

func (m editorModel) Update(msg tea.Msg) (editorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case editorPostMsg:
		if !m.postGen.Current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.state = StateError
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.state = StateSuccess
		m.title.SetValue(msg.post.Title)
		m.content.SetValue(msg.post.Content)
		key := ""
		if msg.post.ImageKey != nil {
			key = *msg.post.ImageKey
		}
		var cmd tea.Cmd
		m, cmd = m.setImageKey(key)
		return m, tea.Batch(cmd, textinput.Blink)

	case editorImageURLMsg:
		if !m.imgGen.Current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.imgErr = msg.err.Error()
			m.imgURL = ""
			return m, nil
		}
		m.imgURL = msg.url
		return m, nil

	case uploadDoneMsg:
		m.uploading = false
		if msg.err != nil {
			// Save never ran; form state stays intact for resubmission.
			m.submitting = false
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.staged = nil
		var cmd tea.Cmd
		m, cmd = m.setImageKey(msg.key)
		return m, tea.Batch(cmd, m.save())

	case saveDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		id := msg.post.ID
		return m, func() tea.Msg { return navMsg{screen: screenDetail, postID: id} }

	case spinner.TickMsg:
		if m.uploading || m.submitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m editorModel) handleKey(msg tea.KeyMsg) (editorModel, tea.Cmd) {
	// The form is inert while an upload or save is in flight.
	if m.uploading || m.submitting {
		return m, nil
	}

	if m.state == StateError {
		switch msg.String() {
		case "r":
			return m.load()
		case "esc":
			return m, navToList
		}
		return m, nil
	}
	if m.state != StateSuccess {
		return m, nil
	}

	if m.attaching {
		return m.handleAttachKey(msg)
	}

	switch msg.Type {
	case tea.KeyEscape:
		return m, navToList

	case tea.KeyTab, tea.KeyShiftTab:
		if m.focus == focusTitle {
			m.focus = focusContent
			m.title.Blur()
			return m, m.content.Focus()
		}
		m.focus = focusTitle
		m.content.Blur()
		m.title.Focus()
		return m, textinput.Blink

	case tea.KeyCtrlO:
		m.attaching = true
		m.fileErr = ""
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		return m, textinput.Blink

	case tea.KeyCtrlX:
		return m.clearImage()

	case tea.KeyCtrlS:
		return m.submit()
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.content, cmd = m.content.Update(msg)
	}
	return m, cmd
}

func (m editorModel) handleAttachKey(msg tea.KeyMsg) (editorModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.attaching = false
		m.pathInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.attaching = false
		m.pathInput.Blur()
		return m.stageFile(m.pathInput.Value()), nil
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

// stageFile validates the candidate locally and stages it for upload on
// submit. A rejected file leaves any previously staged file in place and
// never reaches the network.
func (m editorModel) stageFile(path string) editorModel {
	path = strings.TrimSpace(path)
	if path == "" {
		return m
	}

	info, err := os.Stat(path)
	if err != nil {
		m.fileErr = fmt.Sprintf("cannot read %s", path)
		return m
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if err := m.deps.Uploads.ValidateFile(contentType, info.Size()); err != nil {
		m.fileErr = err.Error()
		return m
	}

	data, err := os.ReadFile(path)
	if err != nil {
		m.fileErr = fmt.Sprintf("cannot read %s", path)
		return m
	}

	m.fileErr = ""
	m.staged = &stagedFile{path: path, contentType: contentType, data: data}
	return m
}

// clearImage drops the staged file, the server-held key, and every derived
// preview in one step.
func (m editorModel) clearImage() (editorModel, tea.Cmd) {
	m.staged = nil
	m.fileErr = ""
	return m.setImageKey("")
}

// submit runs the write flow: field gate, then upload if a file is staged,
// then exactly one create-or-update carrying the final key. The save call is
// only ever issued after the upload resolves.
func (m editorModel) submit() (editorModel, tea.Cmd) {
	if err := posts.ValidateDraft(m.title.Value(), m.content.Value()); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.errMsg = ""
	m.submitting = true

	if m.staged != nil {
		m.uploading = true
		svc := m.deps.Uploads
		staged := m.staged
		upload := func() tea.Msg {
			key, err := svc.Upload(context.Background(), filepath.Base(staged.path), staged.contentType, staged.data)
			return uploadDoneMsg{key: key, err: err}
		}
		return m, tea.Batch(upload, m.spinner.Tick)
	}
	return m, tea.Batch(m.save(), m.spinner.Tick)
}

// save issues the single create-or-update call with the resolved image key.
func (m editorModel) save() tea.Cmd {
	title := m.title.Value()
	content := m.content.Value()
	draft := posts.Draft{Title: &title, Content: &content}
	if m.imageKey != "" {
		key := m.imageKey
		draft.ImageKey = &key
	}

	repo := m.deps.Posts
	edit := m.edit
	id := m.postID
	return func() tea.Msg {
		var post *posts.Post
		var err error
		if edit {
			post, err = repo.Update(context.Background(), id, draft)
		} else {
			post, err = repo.Create(context.Background(), draft)
		}
		return saveDoneMsg{post: post, err: err}
	}
}

func (m editorModel) View() string {
	var b strings.Builder

	heading := "New post"
	if m.edit {
		heading = fmt.Sprintf("Edit post #%d", m.postID)
	}
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n\n")

	switch m.state {
	case StateLoading:
		b.WriteString(subtleStyle.Render("Loading post..."))
		b.WriteString("\n")
		return b.String()

	case StateError:
		b.WriteString(errorStyle.Render("Could not load post: " + m.errMsg))
		b.WriteString("\n\n")
		b.WriteString(subtleStyle.Render("[r]etry  [esc] back"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.title.View())
	b.WriteString("\n\n")
	b.WriteString(m.content.View())
	b.WriteString("\n\n")

	b.WriteString(subtleStyle.Render("Image: "))
	switch {
	case m.staged != nil:
		b.WriteString(fmt.Sprintf("%s (%d bytes, pending upload)", m.staged.path, len(m.staged.data)))
	case m.imageKey != "" && m.imgURL != "":
		b.WriteString(badgeStyle.Render("[image] ") + m.imgURL)
	case m.imageKey != "":
		b.WriteString(m.imageKey)
	default:
		b.WriteString(subtleStyle.Render("none"))
	}
	b.WriteString("\n")
	if m.imgErr != "" {
		b.WriteString(errorStyle.Render("Image preview unavailable: " + m.imgErr))
		b.WriteString("\n")
	}
	if m.fileErr != "" {
		b.WriteString(errorStyle.Render(m.fileErr))
		b.WriteString("\n")
	}

	if m.attaching {
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render("Attach image (enter to stage, esc to cancel)"))
		b.WriteString("\n")
		b.WriteString(m.pathInput.View())
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.uploading:
		b.WriteString(m.spinner.View())
		b.WriteString(" Uploading image...")
	case m.submitting:
		b.WriteString(m.spinner.View())
		b.WriteString(" Saving...")
	default:
		b.WriteString(subtleStyle.Render("ctrl+s save · ctrl+o attach image · ctrl+x clear image · tab switch field · esc back"))
	}
	b.WriteString("\n")
	return b.String()
}
