// Package history keeps the append-only conversation log sent to the question collaborator.
package history

import (
	"strings"

	"github.com/verte-zerg/studyquest/internal/model"
)

// Log is an append-only sequence of conversation turns.
// Turns are never mutated or removed; Clear starts a new log for a new session.
type Log struct {
	turns []model.Turn
}

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Record appends a turn. Turns with blank content are dropped.
func (l *Log) Record(turn model.Turn) bool {
	if strings.TrimSpace(turn.Content) == "" {
		return false
	}
	l.turns = append(l.turns, turn)
	return true
}

// RecordExchange appends an outgoing turn followed by its reply.
// Both are dropped when either is blank so the log keeps alternating.
func (l *Log) RecordExchange(out, in model.Turn) bool {
	if strings.TrimSpace(out.Content) == "" || strings.TrimSpace(in.Content) == "" {
		return false
	}
	l.turns = append(l.turns, out, in)
	return true
}

// Snapshot returns a copy of the full ordered sequence for transmission.
func (l *Log) Snapshot() []model.Turn {
	out := make([]model.Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of recorded turns.
func (l *Log) Len() int {
	return len(l.turns)
}

// Clear drops every turn.
func (l *Log) Clear() {
	l.turns = nil
}

// Alternates reports whether turns alternate user/assistant starting with a user turn.
func Alternates(turns []model.Turn) bool {
	for i, t := range turns {
		want := model.RoleUser
		if i%2 == 1 {
			want = model.RoleAssistant
		}
		if t.Role != want {
			return false
		}
	}
	return true
}
