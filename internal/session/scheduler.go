// Package session implements the learning session engine: state machine, scoring,
// feedback countdown and the exploration world.
package session

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Scheduler delivers msg back to the engine after d.
type Scheduler interface {
	After(d time.Duration, msg tea.Msg) tea.Cmd
}

type teaScheduler struct{}

// TeaScheduler returns a Scheduler backed by tea.Tick.
func TeaScheduler() Scheduler {
	return teaScheduler{}
}

func (teaScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg
	})
}
