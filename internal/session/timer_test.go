package session

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/studyquest/internal/model"
)

type instantScheduler struct {
	delays []time.Duration
}

func (s *instantScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	s.delays = append(s.delays, d)
	return func() tea.Msg { return msg }
}

func tickTimer(t *testing.T, timer *FeedbackTimer, cmd tea.Cmd) int {
	t.Helper()
	steps := 0
	for cmd != nil {
		steps++
		if steps > 1000 {
			t.Fatalf("timer did not finish")
		}
		msg, ok := cmd().(timerTickMsg)
		if !ok {
			return steps
		}
		cmd = timer.Update(msg)
	}
	return steps
}

func TestFeedbackTimerCountsDownAndCompletesOnce(t *testing.T) {
	sched := &instantScheduler{}
	timer := NewFeedbackTimer(sched, 100*time.Millisecond)
	fired := 0
	cmd := timer.Start("Correct!", model.PolarityCorrect, time.Second, func() tea.Cmd {
		fired++
		return nil
	})
	w, ok := timer.Window()
	if !ok || w.Remaining != time.Second || w.Message != "Correct!" {
		t.Fatalf("unexpected window: %+v", w)
	}
	next := timer.Update(cmd().(timerTickMsg))
	w, _ = timer.Window()
	if w.Remaining != 900*time.Millisecond {
		t.Fatalf("expected remaining 900ms, got %v", w.Remaining)
	}
	tickTimer(t, timer, next)
	if fired != 1 {
		t.Fatalf("expected one completion, got %d", fired)
	}
	if timer.Active() {
		t.Fatalf("expected timer to be cleared")
	}
	timer.Cancel()
	if cmd := timer.Finish(); cmd != nil || fired != 1 {
		t.Fatalf("completed timer must not fire again")
	}
}

func TestFeedbackTimerCancelSuppressesCompletion(t *testing.T) {
	timer := NewFeedbackTimer(&instantScheduler{}, 100*time.Millisecond)
	fired := false
	cmd := timer.Start("x", model.PolarityIncorrect, 300*time.Millisecond, func() tea.Cmd {
		fired = true
		return nil
	})
	timer.Cancel()
	tickTimer(t, timer, cmd)
	if fired || timer.Active() {
		t.Fatalf("cancelled timer must not complete")
	}
}

func TestFeedbackTimerStartSupersedesPrevious(t *testing.T) {
	timer := NewFeedbackTimer(&instantScheduler{}, 100*time.Millisecond)
	var fired []string
	first := timer.Start("first", model.PolarityCorrect, 200*time.Millisecond, func() tea.Cmd {
		fired = append(fired, "first")
		return nil
	})
	second := timer.Start("second", model.PolarityError, 200*time.Millisecond, func() tea.Cmd {
		fired = append(fired, "second")
		return nil
	})
	tickTimer(t, timer, first)
	if w, _ := timer.Window(); w.Remaining != 200*time.Millisecond {
		t.Fatalf("stale tick must not advance the new window")
	}
	tickTimer(t, timer, second)
	if len(fired) != 1 || fired[0] != "second" {
		t.Fatalf("expected only second completion, got %v", fired)
	}
}

func TestFeedbackTimerFinishEarly(t *testing.T) {
	timer := NewFeedbackTimer(&instantScheduler{}, 100*time.Millisecond)
	fired := 0
	cmd := timer.Start("x", model.PolarityCorrect, time.Second, func() tea.Cmd {
		fired++
		return nil
	})
	timer.Finish()
	tickTimer(t, timer, cmd)
	if fired != 1 {
		t.Fatalf("expected exactly one completion, got %d", fired)
	}
}

func TestFeedbackWindowProgress(t *testing.T) {
	w := model.FeedbackWindow{Remaining: 250 * time.Millisecond, Total: time.Second}
	if got := w.Progress(); got != 0.75 {
		t.Fatalf("expected 0.75, got %v", got)
	}
}
