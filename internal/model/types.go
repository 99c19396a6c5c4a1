// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// Mode selects one of the three learning modes.
type Mode string

const (
	ModeStatic      Mode = "static"
	ModeAdaptive    Mode = "adaptive"
	ModeExploration Mode = "exploration"
)

// State is the session state machine position.
type State string

const (
	StateSelection State = "selection"
	StateIntro     State = "intro"
	StateActive    State = "active"
	StateResults   State = "results"
)

// Session describes the running session.
type Session struct {
	Mode      Mode
	State     State
	Topic     string
	QuizID    string
	StartedAt time.Time
}

// Kind is the tagged question variant: Open or MultipleChoice.
type Kind interface {
	kind() string
}

// Open is a free-text question.
type Open struct{}

func (Open) kind() string { return "open" }

// MultipleChoice is a question answered by picking one of Options.
type MultipleChoice struct {
	Options []string
}

func (MultipleChoice) kind() string { return "multiple_choice" }

// KindName returns the wire name of a question kind.
func KindName(k Kind) string {
	if k == nil {
		return ""
	}
	return k.kind()
}

// Question is immutable once displayed.
type Question struct {
	ID                 string
	Prompt             string
	Kind               Kind
	CorrectAnswer      string
	Explanation        string
	PriorAnswerCorrect *bool
	Tag                string
	// Difficulty is 1-10, 0 when the source did not rate it.
	Difficulty int
	Factoid    string
}

// Options returns the ordered choices, empty for open questions.
func (q Question) Options() []string {
	if mc, ok := q.Kind.(MultipleChoice); ok {
		return mc.Options
	}
	return nil
}

// IsMultipleChoice reports whether the question offers options.
func (q Question) IsMultipleChoice() bool {
	_, ok := q.Kind.(MultipleChoice)
	return ok
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation history. Content is a serialized payload.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NPC is an exploration-mode entity posing a question.
type NPC struct {
	ID       int
	Position float64
	Glyph    string
	Answered bool
}

// ScoreState is the scoring snapshot.
type ScoreState struct {
	Correct  int
	Answered int
	Target   int
}

// Polarity classifies feedback.
type Polarity string

const (
	PolarityCorrect   Polarity = "correct"
	PolarityIncorrect Polarity = "incorrect"
	PolarityError     Polarity = "error"
)

// FeedbackWindow is the feedback currently on screen.
type FeedbackWindow struct {
	Message   string
	Polarity  Polarity
	Factoid   string
	Remaining time.Duration
	Total     time.Duration
}

// Progress returns the elapsed fraction of the window in [0, 1].
func (w FeedbackWindow) Progress() float64 {
	if w.Total <= 0 {
		return 1
	}
	p := 1 - float64(w.Remaining)/float64(w.Total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// AnswerRecord captures one answered interaction for the results review.
type AnswerRecord struct {
	ID          string
	Seq         int
	Mode        Mode
	Topic       string
	Question    string
	Answer      string
	Correct     bool
	Explanation string
	Tag         string
	Difficulty  int
	AnsweredAt  time.Time
}

// Config defines session settings.
type Config struct {
	FeedbackDuration     time.Duration
	GameFeedbackDuration time.Duration
	Questions            int
	TickInterval         time.Duration
	RequestTimeout       time.Duration
	World                WorldConfig
}

// WorldConfig defines exploration-mode geometry.
type WorldConfig struct {
	Speed               float64
	InteractionDistance float64
	SpawnInterval       float64
	Width               float64
}

// AIConfig defines the question-generation collaborator settings.
type AIConfig struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	Endpoint   string
	APIVersion string
	MaxTokens  int
	Timeout    time.Duration
	Offline    bool
}

// Enabled reports whether a remote collaborator can be used.
func (c AIConfig) Enabled() bool {
	return !c.Offline && strings.TrimSpace(c.APIKey) != ""
}

// TopicAggregate summarizes answers for one topic tag.
type TopicAggregate struct {
	Tag       string
	Correct   int
	Incorrect int
	// Average difficulty of correct and incorrect answers, 0 when there are none.
	CorrectDifficulty   float64
	IncorrectDifficulty float64
}

// Total returns the number of answers for the tag.
func (a TopicAggregate) Total() int {
	return a.Correct + a.Incorrect
}
