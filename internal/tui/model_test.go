package tui

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/studyquest/internal/ai"
	"github.com/verte-zerg/studyquest/internal/content"
	"github.com/verte-zerg/studyquest/internal/model"
	"github.com/verte-zerg/studyquest/internal/session"
	"github.com/verte-zerg/studyquest/internal/store"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

type instantScheduler struct{}

func (instantScheduler) After(_ time.Duration, msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	catalog, err := content.Builtin()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	st, err := store.Open()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	m := NewModel(session.Options{
		Config: model.Config{
			FeedbackDuration:     100 * time.Millisecond,
			GameFeedbackDuration: 100 * time.Millisecond,
			Questions:            10,
			TickInterval:         16 * time.Millisecond,
			World: model.WorldConfig{
				Speed:               3,
				InteractionDistance: 50,
				SpawnInterval:       450,
				Width:               2500,
			},
		},
		Catalog:   catalog,
		Client:    ai.NewClient(ai.NewOfflineCompleter(catalog), ai.NewQuestionCache()),
		Scheduler: instantScheduler{},
		Rand:      rand.New(rand.NewSource(3)),
	}, st, Launch{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// run executes cmd and everything it produces, skipping spinner animation.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 10000 {
			t.Fatalf("model did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, out := m.Update(msg)
			queue = append(queue, out)
		}
	}
}

func press(t *testing.T, m *Model, key tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(key)
	run(t, m, cmd)
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enterKey = tea.KeyMsg{Type: tea.KeyEnter}

func TestStaticQuizThroughKeys(t *testing.T) {
	m := newTestModel(t)
	press(t, m, enterKey)
	if m.engine.State() != model.StateIntro {
		t.Fatalf("expected intro, got %s", m.engine.State())
	}
	if !m.chromeVisible {
		t.Fatalf("expected chrome on intro")
	}
	press(t, m, enterKey)
	if m.engine.State() != model.StateActive {
		t.Fatalf("expected active, got %s", m.engine.State())
	}
	if m.chromeVisible {
		t.Fatalf("expected chrome hidden while active")
	}
	footer := plain(m.renderFooter())
	if !strings.Contains(footer, "Question 1 of 5") || !strings.Contains(footer, "Score 0/0") {
		t.Fatalf("unexpected footer: %q", footer)
	}

	for i := 0; i < 5; i++ {
		q := m.engine.Status().Question
		if q == nil {
			t.Fatalf("question %d missing", i)
		}
		choice := -1
		for j, opt := range q.Options() {
			if opt == q.CorrectAnswer {
				choice = j
			}
		}
		if choice < 0 {
			t.Fatalf("correct answer not among options: %+v", q)
		}
		press(t, m, runeKey(string(rune('1'+choice))))
		if m.optionCursor != choice {
			t.Fatalf("expected cursor %d, got %d", choice, m.optionCursor)
		}
		press(t, m, enterKey)
	}

	if m.engine.State() != model.StateResults {
		t.Fatalf("expected results, got %s", m.engine.State())
	}
	if !m.chromeVisible {
		t.Fatalf("expected chrome restored on results")
	}
	if len(m.report.Answers) != 5 {
		t.Fatalf("expected 5 reviewed answers, got %d", len(m.report.Answers))
	}
	view := plain(m.View())
	if !strings.Contains(view, "Your Score: 5/5") || !strings.Contains(view, "100%") {
		t.Fatalf("results view missing score: %s", view)
	}
}

func TestOptionCursorWraps(t *testing.T) {
	m := newTestModel(t)
	press(t, m, enterKey)
	press(t, m, enterKey)
	n := len(m.engine.Status().Question.Options())
	press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.optionCursor != n-1 {
		t.Fatalf("expected cursor %d, got %d", n-1, m.optionCursor)
	}
	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.optionCursor != 0 {
		t.Fatalf("expected cursor 0, got %d", m.optionCursor)
	}
}

func TestEscapeReturnsToSelection(t *testing.T) {
	m := newTestModel(t)
	press(t, m, enterKey)
	press(t, m, enterKey)
	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.engine.State() != model.StateSelection {
		t.Fatalf("expected selection, got %s", m.engine.State())
	}
	if !m.chromeVisible {
		t.Fatalf("expected chrome visible after cancel")
	}
}

func TestTopicInputStartsExploration(t *testing.T) {
	m := newTestModel(t)
	for m.items[m.cursor].kind != itemExploration {
		press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	_, _ = m.Update(enterKey)
	if !m.topicMode {
		t.Fatalf("expected topic input")
	}
	m.topicInput.SetValue("science")
	_, cmd := m.Update(enterKey)
	run(t, m, cmd)
	st := m.engine.Status()
	if st.State() != model.StateActive || !st.Exploring {
		t.Fatalf("expected exploration, got %+v", st)
	}
	if st.Session.Topic != "science" {
		t.Fatalf("unexpected topic %q", st.Session.Topic)
	}
}

func TestReleaseStopsHeldDirection(t *testing.T) {
	m := newTestModel(t)
	m.engine.SelectExploration("science")
	m.sync(nil)

	// The returned commands start movement and arm the release tick; neither is run here.
	m.Update(runeKey("l"))
	if m.held != session.Right || m.engine.Status().Held != session.Right {
		t.Fatalf("expected right held, got %v", m.engine.Status().Held)
	}
	first := m.holdSeq
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.holdSeq == first {
		t.Fatalf("expected repeat to re-arm release")
	}

	m.Update(releaseMsg{seq: first})
	if m.engine.Status().Held != session.Right {
		t.Fatalf("stale release must not stop movement")
	}
	m.Update(releaseMsg{seq: m.holdSeq})
	if m.held != session.Still || m.engine.Status().Held != session.Still {
		t.Fatalf("expected release, got %v", m.engine.Status().Held)
	}
}

func TestRenderWorldPlacesPlayerAndNPCs(t *testing.T) {
	npcs := []session.VisibleNPC{
		{NPC: model.NPC{ID: 1, Glyph: "Ω"}, Offset: 500},
		{NPC: model.NPC{ID: 2, Glyph: "Ψ"}, Offset: -1000},
		{NPC: model.NPC{ID: 3, Glyph: "Φ"}, Offset: 5000},
	}
	lines := strings.Split(plain(renderWorld(npcs, -1, 21)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected strip and ground, got %d lines", len(lines))
	}
	strip := []rune(lines[0])
	if len(strip) != 21 {
		t.Fatalf("expected 21 cells, got %d", len(strip))
	}
	if strip[10] != '@' || strip[15] != 'Ω' || strip[0] != 'Ψ' {
		t.Fatalf("unexpected strip %q", lines[0])
	}
	if strings.ContainsRune(lines[0], 'Φ') {
		t.Fatalf("npc outside the view must not be drawn")
	}
}

func TestRenderFooterSelection(t *testing.T) {
	m := newTestModel(t)
	footer := plain(m.renderFooter())
	if !strings.Contains(footer, "enter select") || !strings.Contains(footer, "q quit") {
		t.Fatalf("unexpected footer: %q", footer)
	}
}
