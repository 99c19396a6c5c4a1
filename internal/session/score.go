package session

import "github.com/verte-zerg/studyquest/internal/model"

// MaxQuestions bounds the number of questions in a quiz session.
const MaxQuestions = 20

// Tracker accumulates answered and correct counts against a target.
type Tracker struct {
	state model.ScoreState
}

// NewTracker returns a tracker completing after target answers.
func NewTracker(target int) *Tracker {
	if target < 0 {
		target = 0
	}
	return &Tracker{state: model.ScoreState{Target: target}}
}

// QuestionTarget caps a configured question count to [1, MaxQuestions].
func QuestionTarget(configured int) int {
	if configured < 1 {
		return 1
	}
	if configured > MaxQuestions {
		return MaxQuestions
	}
	return configured
}

// RecordAnswer counts one answer. Answers past the target are refused.
func (t *Tracker) RecordAnswer(correct bool) bool {
	if t.state.Answered >= t.state.Target {
		return false
	}
	t.state.Answered++
	if correct {
		t.state.Correct++
	}
	return true
}

// IsComplete reports whether the target has been reached.
func (t *Tracker) IsComplete() bool {
	return t.state.Answered >= t.state.Target
}

// Score returns the current counts.
func (t *Tracker) Score() model.ScoreState {
	return t.state
}
