package session

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/studyquest/internal/model"
)

// FeedbackSampleInterval is how often a running feedback countdown is sampled.
const FeedbackSampleInterval = 50 * time.Millisecond

type timerTickMsg struct {
	seq int
}

// FeedbackTimer is a cancellable countdown. At most one window runs at a time;
// ticks from a cancelled or superseded window are dropped by sequence number.
type FeedbackTimer struct {
	sched      Scheduler
	interval   time.Duration
	seq        int
	window     *model.FeedbackWindow
	onComplete func() tea.Cmd
}

// NewFeedbackTimer returns an idle timer sampling every interval.
func NewFeedbackTimer(sched Scheduler, interval time.Duration) *FeedbackTimer {
	if interval <= 0 {
		interval = FeedbackSampleInterval
	}
	return &FeedbackTimer{sched: sched, interval: interval}
}

// Start shows message for total and then calls onComplete. A running window is cancelled first.
func (t *FeedbackTimer) Start(message string, polarity model.Polarity, total time.Duration, onComplete func() tea.Cmd) tea.Cmd {
	t.Cancel()
	t.window = &model.FeedbackWindow{
		Message:   message,
		Polarity:  polarity,
		Remaining: total,
		Total:     total,
	}
	t.onComplete = onComplete
	if total <= 0 {
		return t.Finish()
	}
	return t.sched.After(t.interval, timerTickMsg{seq: t.seq})
}

// Cancel stops the running window without calling onComplete.
func (t *FeedbackTimer) Cancel() {
	if t.window == nil {
		return
	}
	t.clear()
}

// Finish closes the running window now and calls onComplete once.
func (t *FeedbackTimer) Finish() tea.Cmd {
	if t.window == nil {
		return nil
	}
	done := t.onComplete
	t.clear()
	if done == nil {
		return nil
	}
	return done()
}

// Update advances the countdown on its own tick messages.
func (t *FeedbackTimer) Update(msg timerTickMsg) tea.Cmd {
	if t.window == nil || msg.seq != t.seq {
		return nil
	}
	t.window.Remaining -= t.interval
	if t.window.Remaining <= 0 {
		t.window.Remaining = 0
		return t.Finish()
	}
	return t.sched.After(t.interval, timerTickMsg{seq: t.seq})
}

// Active reports whether a window is running.
func (t *FeedbackTimer) Active() bool {
	return t.window != nil
}

// Window returns a copy of the running window.
func (t *FeedbackTimer) Window() (model.FeedbackWindow, bool) {
	if t.window == nil {
		return model.FeedbackWindow{}, false
	}
	return *t.window, true
}

func (t *FeedbackTimer) clear() {
	t.seq++
	t.window = nil
	t.onComplete = nil
}
