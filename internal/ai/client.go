// Package ai wraps the external question-generation collaborator.
package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/verte-zerg/studyquest/internal/model"
)

// Completer sends the whole turn sequence to a stateless collaborator and returns the raw reply content.
type Completer interface {
	Complete(ctx context.Context, turns []model.Turn) (string, error)
}

// QuestionRequest describes one question acquisition.
type QuestionRequest struct {
	Intent Intent
	Topic  string
	// EntityID and Cacheable enable the first-question cache for exploration NPCs.
	EntityID  int
	Cacheable bool
}

// Exchange is one successful round trip. Outgoing and Incoming are recorded by the caller,
// Incoming verbatim so the conversation replays exactly.
type Exchange struct {
	Outgoing model.Turn
	Incoming model.Turn
	Question *model.Question
	Verdict  *Verdict
	Cached   bool
}

// Client maps collaborator replies to questions and verdicts.
type Client struct {
	completer Completer
	cache     *QuestionCache
}

// NewClient returns a client. cache may be nil to disable caching.
func NewClient(completer Completer, cache *QuestionCache) *Client {
	return &Client{completer: completer, cache: cache}
}

// Cache returns the client's question cache.
func (c *Client) Cache() *QuestionCache {
	return c.cache
}

// RequestNextQuestion sends history plus a "start quiz" or "new question" instruction.
func (c *Client) RequestNextQuestion(ctx context.Context, history []model.Turn, req QuestionRequest) (Exchange, error) {
	key := cacheKey(req.EntityID, req.Topic)
	if req.Cacheable {
		if ex, ok := c.cache.Get(key); ok {
			ex.Cached = true
			return ex, nil
		}
	}
	out, err := encodeInstruction(questionInstruction(req.Intent, req.Topic))
	if err != nil {
		return Exchange{}, err
	}
	content, err := c.complete(ctx, history, out)
	if err != nil {
		return Exchange{}, err
	}
	q, err := ParseQuestion(content)
	if err != nil {
		return Exchange{}, err
	}
	ex := Exchange{
		Outgoing: out,
		Incoming: model.Turn{Role: model.RoleAssistant, Content: content},
		Question: &q,
	}
	if req.Cacheable {
		c.cache.Put(key, ex)
	}
	return ex, nil
}

// ForgetQuestion drops the cached first question of an entity once it has been answered.
func (c *Client) ForgetQuestion(entityID int, topic string) {
	c.cache.Delete(cacheKey(entityID, topic))
}

func cacheKey(entityID int, topic string) CacheKey {
	return CacheKey{EntityID: entityID, Topic: strings.ToLower(strings.TrimSpace(topic))}
}

// SubmitAnswer sends history plus the answer with a "give feedback" instruction. Never cached.
func (c *Client) SubmitAnswer(ctx context.Context, history []model.Turn, answer string) (Exchange, error) {
	out, err := encodeInstruction(instruction{Instruction: instructionFeedback, Answer: strings.TrimSpace(answer)})
	if err != nil {
		return Exchange{}, err
	}
	content, err := c.complete(ctx, history, out)
	if err != nil {
		return Exchange{}, err
	}
	verdict, err := ParseVerdict(content)
	if err != nil {
		return Exchange{}, err
	}
	return Exchange{
		Outgoing: out,
		Incoming: model.Turn{Role: model.RoleAssistant, Content: content},
		Verdict:  &verdict,
	}, nil
}

func (c *Client) complete(ctx context.Context, history []model.Turn, out model.Turn) (string, error) {
	turns := make([]model.Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, out)
	content, err := c.completer.Complete(ctx, turns)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return "", err
		}
		return "", &TransportError{Op: "complete", Err: err}
	}
	return content, nil
}
