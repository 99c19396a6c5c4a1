// Package tui provides the Bubble Tea learning interface.
package tui

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/studyquest/internal/content"
	"github.com/verte-zerg/studyquest/internal/model"
	"github.com/verte-zerg/studyquest/internal/session"
	"github.com/verte-zerg/studyquest/internal/stats"
	"github.com/verte-zerg/studyquest/internal/store"
)

const (
	// Terminals report no key release, so a held direction is released when repeats stop.
	initialHold = 500 * time.Millisecond
	repeatHold  = 150 * time.Millisecond
)

type itemKind int

const (
	itemQuiz itemKind = iota
	itemAdaptive
	itemExploration
)

type menuItem struct {
	kind   itemKind
	label  string
	detail string
	quizID string
}

type releaseMsg struct {
	seq int
}

// Launch preselects a mode when the program starts.
type Launch struct {
	Mode   model.Mode
	Topic  string
	QuizID string
}

// Model implements the Bubble Tea learning UI.
type Model struct {
	engine  *session.Engine
	store   *store.Store
	catalog *content.Catalog
	launch  Launch

	width  int
	height int

	items      []menuItem
	cursor     int
	topicMode  bool
	topicFor   itemKind
	topicInput textinput.Model

	questionID   string
	optionCursor int
	answerInput  textinput.Model

	spinner  spinner.Model
	progress progress.Model
	results  viewport.Model

	chromeVisible bool
	state         model.State
	report        stats.Report
	reportErr     string

	held    session.Direction
	holdSeq int
}

// NewModel constructs the UI and the session engine it drives. opts.Chrome is set to the model.
func NewModel(opts session.Options, st *store.Store, launch Launch) *Model {
	m := &Model{
		store:         st,
		catalog:       opts.Catalog,
		launch:        launch,
		chromeVisible: true,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
		progress:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		results:       viewport.New(0, 0),
	}
	if st != nil {
		opts.Ledger = st
	}
	opts.Chrome = m
	m.engine = session.New(opts)
	m.state = m.engine.State()
	m.items = buildMenu(opts.Catalog)
	m.topicInput = newInput("Topic: ", "e.g. the middle ages")
	m.answerInput = newInput("> ", "type your answer")
	return m
}

func buildMenu(catalog *content.Catalog) []menuItem {
	var items []menuItem
	if catalog != nil {
		for _, q := range catalog.Quizzes() {
			items = append(items, menuItem{
				kind:   itemQuiz,
				label:  q.Title,
				detail: fmt.Sprintf("%s · %d questions", q.Category, len(q.Questions)),
				quizID: q.ID,
			})
		}
	}
	items = append(items,
		menuItem{kind: itemAdaptive, label: "AI Quiz", detail: "questions adapt to your answers"},
		menuItem{kind: itemExploration, label: "Exploration", detail: "walk and meet characters with questions"},
	)
	return items
}

func newInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 200
	return input
}

// SetChromeVisible implements session.Chrome.
func (m *Model) SetChromeVisible(visible bool) {
	m.chromeVisible = visible
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	switch m.launch.Mode {
	case model.ModeStatic:
		if m.launch.QuizID != "" {
			cmds = append(cmds, m.engine.SelectQuiz(m.launch.QuizID))
		}
	case model.ModeAdaptive:
		if m.launch.Topic != "" {
			cmds = append(cmds, m.engine.SelectAdaptive(m.launch.Topic))
		}
	case model.ModeExploration:
		if m.launch.Topic != "" {
			cmds = append(cmds, m.engine.SelectExploration(m.launch.Topic))
		}
	}
	return m.sync(tea.Batch(cmds...))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, m.sync(m.handleKey(msg))
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case releaseMsg:
		if msg.seq == m.holdSeq && m.held != session.Still {
			m.held = session.Still
			m.engine.Release()
		}
		return m, nil
	default:
		return m, m.sync(m.engine.Update(msg))
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.engine.State() {
	case model.StateSelection:
		if m.topicMode {
			return m.handleTopicKey(msg)
		}
		return m.handleSelectionKey(msg)
	case model.StateIntro:
		switch msg.String() {
		case "enter", " ":
			return m.engine.Start()
		case "esc", "backspace":
			return m.engine.Cancel()
		case "q":
			return tea.Quit
		}
		return nil
	case model.StateActive:
		return m.handleActiveKey(msg)
	case model.StateResults:
		switch msg.String() {
		case "r":
			return m.engine.Restart()
		case "enter", "esc":
			return m.engine.Cancel()
		case "q":
			return tea.Quit
		}
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleSelectionKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "up", "k":
		m.cursor = (m.cursor - 1 + len(m.items)) % len(m.items)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(m.items)
	case "enter", " ":
		item := m.items[m.cursor]
		if item.kind == itemQuiz {
			return m.engine.SelectQuiz(item.quizID)
		}
		m.topicMode = true
		m.topicFor = item.kind
		m.topicInput.SetValue(m.launch.Topic)
		m.topicInput.CursorEnd()
		return m.topicInput.Focus()
	}
	return nil
}

func (m *Model) handleTopicKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.topicMode = false
		m.topicInput.Blur()
		return nil
	case tea.KeyEnter:
		topic := strings.TrimSpace(m.topicInput.Value())
		if topic == "" {
			return nil
		}
		m.topicMode = false
		m.topicInput.Blur()
		m.launch.Topic = topic
		if m.topicFor == itemExploration {
			return m.engine.SelectExploration(topic)
		}
		return m.engine.SelectAdaptive(topic)
	}
	var cmd tea.Cmd
	m.topicInput, cmd = m.topicInput.Update(msg)
	return cmd
}

func (m *Model) handleActiveKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEsc {
		m.held = session.Still
		return m.engine.Cancel()
	}
	st := m.engine.Status()
	if st.Feedback != nil {
		switch msg.String() {
		case "enter", " ":
			return m.engine.Proceed()
		}
		return m.handleMovementKey(msg, st)
	}
	if st.Question == nil {
		return m.handleMovementKey(msg, st)
	}
	if st.Pending {
		return nil
	}
	if !st.Question.IsMultipleChoice() {
		if msg.Type == tea.KeyEnter {
			m.engine.SetAnswer(m.answerInput.Value())
			return m.engine.Submit()
		}
		var cmd tea.Cmd
		m.answerInput, cmd = m.answerInput.Update(msg)
		return cmd
	}
	options := st.Question.Options()
	switch msg.String() {
	case "up", "k":
		m.optionCursor = (m.optionCursor - 1 + len(options)) % len(options)
	case "down", "j", "tab":
		m.optionCursor = (m.optionCursor + 1) % len(options)
	case "enter", " ":
		m.engine.SetAnswer(options[m.optionCursor])
		return m.engine.Submit()
	default:
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(options) {
			m.optionCursor = n - 1
		}
	}
	return nil
}

func (m *Model) handleMovementKey(msg tea.KeyMsg, st session.Status) tea.Cmd {
	if !st.Exploring {
		return nil
	}
	dir := session.Still
	switch msg.String() {
	case "left", "h", "a":
		dir = session.Left
	case "right", "l", "d":
		dir = session.Right
	default:
		return nil
	}
	hold := repeatHold
	if dir != m.held {
		hold = initialHold
	}
	m.held = dir
	m.holdSeq++
	seq := m.holdSeq
	release := tea.Tick(hold, func(time.Time) tea.Msg {
		return releaseMsg{seq: seq}
	})
	return tea.Batch(m.engine.Press(dir), release)
}

// sync reacts to engine transitions after every update.
func (m *Model) sync(cmd tea.Cmd) tea.Cmd {
	st := m.engine.Status()
	if st.State() != m.state {
		m.state = st.State()
		if m.state == model.StateResults {
			m.refreshReport()
		}
		if m.state != model.StateActive {
			m.held = session.Still
		}
	}
	qid := ""
	if st.Question != nil {
		qid = st.Question.ID
	}
	if qid == m.questionID {
		return cmd
	}
	m.questionID = qid
	m.optionCursor = 0
	m.answerInput.Reset()
	if st.Question != nil && !st.Question.IsMultipleChoice() {
		return tea.Batch(cmd, m.answerInput.Focus())
	}
	m.answerInput.Blur()
	return cmd
}

func (m *Model) refreshReport() {
	m.report = stats.Report{}
	m.reportErr = ""
	if m.store == nil {
		return
	}
	report, err := stats.BuildReport(context.Background(), m.store)
	if err != nil {
		m.reportErr = err.Error()
		log.Printf("failed to build results: %v", err)
		return
	}
	m.report = report
	m.updateLayout()
}

func (m *Model) updateLayout() {
	width := m.contentWidth()
	m.progress.Width = width
	m.answerInput.Width = width - 4
	m.topicInput.Width = width - 10
	m.results.Width = width
	m.results.Height = max(3, m.height-8)
	m.results.SetContent(m.renderReport(width))
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(20, min(int(float64(m.width)*0.70), 100))
}
