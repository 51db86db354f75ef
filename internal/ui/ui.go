package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/desertthunder/coursetube/internal/tasks"
	"github.com/desertthunder/coursetube/internal/youtube"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CourseListView ViewState = iota
	URLInputView
	ConfirmView
	ImportView
	ResultView
)

// resultPreview caps how many imported items the result view lists.
const resultPreview = 10

// CourseLister lists courses matching criteria.
type CourseLister interface {
	List(criteria map[string]any) ([]*models.Course, error)
}

// Options configures a [Model].
//
// A preset CourseID skips the course list; with PlaylistURL also set the import starts right away.
type Options struct {
	UserID      string
	Courses     CourseLister
	Engine      tasks.Engine
	CourseID    string
	PlaylistURL string
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	opts     Options
	width    int
	height   int
	list     list.Model
	selected *models.Course
	input    textinput.Model
	url      string
	spinner  spinner.Model
	progress tasks.ProgressUpdate
	history  []string
	updates  chan tasks.ProgressUpdate
	done     chan Msg
	result   *tasks.ImportResult
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "https://www.youtube.com/playlist?list=..."
	input.CharLimit = 512
	input.Width = 60
	input.SetValue(opts.PlaylistURL)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	courses := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	courses.Title = "Courses"

	return &Model{
		ctx:     ctx,
		view:    CourseListView,
		opts:    opts,
		list:    courses,
		input:   input,
		url:     opts.PlaylistURL,
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init fetches the user's courses.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCourses(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case CourseListView:
			return m.handleCourseListKeys(msg)
		case URLInputView:
			return m.handleURLKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ImportView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCoursesFetched:
		data := msg.data.(coursesFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		return m, m.showCourses(data.courses)

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		if m.progress.Message != "" && update.Phase != m.progress.Phase {
			m.history = append(m.history, m.progress.Message)
		}
		m.progress = update
		return m, m.waitForImport()

	case MsgImportComplete:
		data := msg.data.(importComplete)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.updates = nil
		m.done = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) showCourses(courses []*models.Course) tea.Cmd {
	items := make([]list.Item, len(courses))
	for i, c := range courses {
		items[i] = courseItem{course: c}
		if c.ID() == m.opts.CourseID {
			m.selected = c
		}
	}
	cmd := m.list.SetItems(items)

	switch {
	case m.opts.CourseID == "":
		return cmd
	case m.selected == nil:
		m.err = fmt.Errorf("%w: %s", shared.ErrCourseNotFound, m.opts.CourseID)
		return nil
	case m.url != "":
		return m.startImport()
	default:
		m.view = URLInputView
		return m.input.Focus()
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case CourseListView:
		return m.renderCourseList()
	case URLInputView:
		return m.renderURLInput()
	case ConfirmView:
		return m.renderConfirm()
	case ImportView:
		return m.renderImport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleCourseListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.list.SelectedItem().(courseItem); ok {
				m.selected = item.course
				m.view = URLInputView
				return m, m.input.Focus()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleURLKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.input.Blur()
		m.input.Err = nil
		m.view = CourseListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		value := strings.TrimSpace(m.input.Value())
		if _, ok := youtube.ExtractPlaylistID(value); !ok {
			m.input.Err = shared.ErrInvalidURL
			return m, nil
		}
		m.input.Err = nil
		m.input.Blur()
		m.url = value
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.startImport()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = URLInputView
		return m, m.input.Focus()
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = CourseListView
		m.selected = nil
		m.url = ""
		m.input.SetValue("")
		m.progress = tasks.ProgressUpdate{}
		m.history = nil
		m.result = nil
		m.err = nil
		return m, m.fetchCourses()
	}
	return m, nil
}

func (m *Model) fetchCourses() tea.Cmd {
	return func() tea.Msg {
		courses, err := m.opts.Courses.List(map[string]any{"user_id": m.opts.UserID})
		return coursesFetchedMsg(courses, err)
	}
}

// startImport runs the import in the background. Progress and the final result arrive as messages.
func (m *Model) startImport() tea.Cmd {
	m.view = ImportView
	m.updates = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan Msg, 1)

	req := tasks.ImportRequest{UserID: m.opts.UserID, CourseID: m.selected.ID(), PlaylistURL: m.url}
	updates, done := m.updates, m.done
	go func() {
		result, err := m.opts.Engine.Import(m.ctx, req, updates)
		done <- importCompleteMsg(result, err)
	}()

	return m.waitForImport()
}

func (m *Model) waitForImport() tea.Cmd {
	updates, done := m.updates, m.done
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update := <-updates:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func (m *Model) renderCourseList() string {
	if len(m.list.Items()) == 0 {
		return fmt.Sprintf("%s\n%s\n\n%s",
			styles.title.Render("Courses"),
			styles.faint.Render("No courses yet. Create one with `coursetube courses create`."),
			m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.list.View(), helpView)
}

func (m *Model) renderURLInput() string {
	title := styles.title.Render(fmt.Sprintf("Import a playlist into '%s'", m.selected.Title()))

	var errLine string
	if m.input.Err != nil {
		errLine = "\n" + styles.err.Render(m.input.Err.Error())
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, m.input.View(), errLine, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Import into '%s'?", m.selected.Title()))
	info := fmt.Sprintf("Playlist: %s\n\nItems are appended in playlist order and the course source is set to this URL.", m.url)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

func (m *Model) renderImport() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Importing playlist"))
	b.WriteString("\n")

	for _, line := range m.history {
		b.WriteString(styles.ok.Render("✓ "))
		b.WriteString(styles.faint.Render(line))
		b.WriteString("\n")
	}

	current := m.progress.Message
	if current == "" {
		current = "Starting..."
	}
	if m.progress.Total > 0 {
		current = fmt.Sprintf("%s (%d/%d)", current, m.progress.Step, m.progress.Total)
	}
	fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), current)
	return b.String()
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Import failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	var b strings.Builder
	b.WriteString(styles.ok.Render("✓ Import complete"))
	fmt.Fprintf(&b, "\n\nPlaylist: %s\nCourse:   %s\nItems:    %d\n",
		m.result.Playlist.Title, m.result.Course.Title(), len(m.result.Items))

	if m.result.Unavailable > 0 {
		b.WriteString(styles.warn.Render(fmt.Sprintf("%d videos were unavailable and imported as placeholders", m.result.Unavailable)))
		b.WriteString("\n")
	}

	if len(m.result.Items) > 0 {
		b.WriteString("\n")
	}
	for i, item := range m.result.Items {
		if i == resultPreview {
			b.WriteString(styles.faint.Render(fmt.Sprintf("  … and %d more", len(m.result.Items)-resultPreview)))
			b.WriteString("\n")
			break
		}
		fmt.Fprintf(&b, "  %d. %s", item.OrderIndex()+1, item.Title())
		if d := item.DurationMinutes(); d != nil {
			b.WriteString(styles.faint.Render(fmt.Sprintf(" [%dm]", *d)))
		}
		b.WriteString("\n")
	}

	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}
