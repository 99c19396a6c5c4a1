package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/studyquest/internal/content"
	"github.com/verte-zerg/studyquest/internal/model"
)

// OfflineCompleter answers from the static catalog when no remote collaborator is configured.
// Like a remote model it is stateless: everything it needs is read back from the resent turns.
type OfflineCompleter struct {
	catalog *content.Catalog

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewOfflineCompleter returns a completer backed by catalog.
func NewOfflineCompleter(catalog *content.Catalog) *OfflineCompleter {
	return &OfflineCompleter{
		catalog: catalog,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Complete implements Completer.
func (c *OfflineCompleter) Complete(ctx context.Context, turns []model.Turn) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(turns) == 0 {
		return "", fmt.Errorf("no turns to answer")
	}
	in, ok := decodeInstruction(turns[len(turns)-1].Content)
	if !ok {
		return "", fmt.Errorf("last turn is not an instruction")
	}
	var reply Reply
	if in.Instruction == instructionFeedback {
		reply = c.judge(turns[:len(turns)-1], in.Answer)
	} else {
		reply = c.pick(turns, in.Topic)
	}
	data, err := json.Marshal(reply)
	if err != nil {
		return "", fmt.Errorf("failed to encode reply: %w", err)
	}
	return string(data), nil
}

func (c *OfflineCompleter) judge(history []model.Turn, answer string) Reply {
	last, ok := lastAsked(history)
	if !ok {
		return Reply{Explanation: "There was no question to answer."}
	}
	correct := strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(last.CorrectAnswer))
	explanation := "Correct! Nice one."
	if !correct {
		explanation = fmt.Sprintf("Not quite. The answer is %s.", last.CorrectAnswer)
	}
	return Reply{
		PreviousResponseCorrect: &correct,
		Explanation:             explanation,
		Tag:                     last.Tag,
		Difficulty:              last.Difficulty,
	}
}

// pick returns an unasked catalog question for topic, or an empty reply once the pool is exhausted.
func (c *OfflineCompleter) pick(history []model.Turn, topic string) Reply {
	asked := map[string]struct{}{}
	for _, t := range history {
		if t.Role != model.RoleAssistant {
			continue
		}
		var r Reply
		if err := json.Unmarshal([]byte(t.Content), &r); err == nil && r.Question != "" {
			asked[r.Question] = struct{}{}
		}
	}
	type candidate struct {
		q   content.Question
		tag string
	}
	var pool, fallback []candidate
	for _, quiz := range c.catalog.Quizzes() {
		matches := strings.EqualFold(quiz.Category, topic) || strings.EqualFold(quiz.ID, topic)
		for _, q := range quiz.Questions {
			if _, ok := asked[q.Prompt]; ok {
				continue
			}
			cand := candidate{q: q, tag: quiz.Category}
			fallback = append(fallback, cand)
			if matches {
				pool = append(pool, cand)
			}
		}
	}
	if len(pool) == 0 {
		pool = fallback
	}
	if len(pool) == 0 {
		return Reply{}
	}
	c.mu.Lock()
	chosen := pool[c.rnd.Intn(len(pool))]
	c.mu.Unlock()
	return Reply{
		Question:      chosen.q.Prompt,
		Type:          "multiple_choice",
		Options:       append([]string(nil), chosen.q.Options...),
		CorrectAnswer: chosen.q.Answer,
		Tag:           chosen.tag,
		Difficulty:    3,
	}
}

func lastAsked(history []model.Turn) (Reply, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != model.RoleAssistant {
			continue
		}
		var r Reply
		if err := json.Unmarshal([]byte(history[i].Content), &r); err != nil {
			continue
		}
		if r.Question != "" {
			return r, true
		}
	}
	return Reply{}, false
}
