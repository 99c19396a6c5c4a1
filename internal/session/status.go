package session

import (
	"slices"

	"github.com/verte-zerg/studyquest/internal/content"
	"github.com/verte-zerg/studyquest/internal/model"
)

// Status is a read-only view of the engine for the presentation layer.
type Status struct {
	Session  model.Session
	Quiz     content.Quiz
	Question *model.Question
	Answer   string
	Pending  bool
	Feedback *model.FeedbackWindow
	Score    model.ScoreState
	// Index is the zero-based position of the current question.
	Index int

	Exploring bool
	Distance  float64
	Held      Direction
	Moving    bool
	ActiveNPC int
	NPCs      []model.NPC
}

// Status returns the current view of the session.
func (e *Engine) Status() Status {
	st := Status{
		Session:   e.session,
		Quiz:      e.quiz,
		Answer:    e.answer,
		Pending:   e.pending,
		Score:     e.tracker.Score(),
		Index:     e.tracker.Score().Answered,
		ActiveNPC: e.activeNPC,
		Moving:    e.moving,
	}
	if e.question != nil {
		q := cloneQuestion(*e.question)
		st.Question = &q
	}
	if w, ok := e.timer.Window(); ok {
		w.Factoid = e.factoid
		st.Feedback = &w
		if st.Index > 0 {
			st.Index--
		}
	}
	if e.world != nil {
		st.Exploring = true
		st.Distance = e.world.Distance()
		st.Held = e.world.Held()
		st.NPCs = e.world.NPCs()
	}
	return st
}

// Visible returns exploration NPCs within span of the player.
func (e *Engine) Visible(span float64) []VisibleNPC {
	if e.world == nil {
		return nil
	}
	return e.world.Visible(span)
}

// State returns the current state tag.
func (e *Engine) State() model.State {
	return e.session.State
}

// Turns returns the conversation history.
func (e *Engine) Turns() []model.Turn {
	return e.history.Snapshot()
}

// State returns the session state tag.
func (s Status) State() model.State {
	return s.Session.State
}

func cloneQuestion(q model.Question) model.Question {
	if mc, ok := q.Kind.(model.MultipleChoice); ok {
		q.Kind = model.MultipleChoice{Options: slices.Clone(mc.Options)}
	}
	if q.PriorAnswerCorrect != nil {
		prior := *q.PriorAnswerCorrect
		q.PriorAnswerCorrect = &prior
	}
	return q
}
