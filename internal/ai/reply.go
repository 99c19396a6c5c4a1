package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"

	"github.com/verte-zerg/studyquest/internal/model"
)

// Reply is the structured object the collaborator answers with.
type Reply struct {
	Question                string   `json:"question,omitempty"`
	Type                    string   `json:"type,omitempty"`
	Options                 []string `json:"options,omitempty"`
	PreviousResponseCorrect *bool    `json:"previousResponseCorrect,omitempty"`
	Explanation             string   `json:"explanation,omitempty"`
	Tag                     string   `json:"tag,omitempty"`
	CorrectAnswer           string   `json:"correctAnswer,omitempty"`
	Difficulty              int      `json:"difficulty,omitempty"`
	Factoid                 string   `json:"factoid,omitempty"`
}

// Verdict is the judged outcome of a submitted answer.
type Verdict struct {
	Correct     bool
	Explanation string
	Factoid     string
	Tag         string
	Difficulty  int
}

var (
	questionSchema = mustResolve(replySchema("question", "type"))
	feedbackSchema = mustResolve(replySchema("previousResponseCorrect", "explanation"))
)

func replySchema(required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: required,
		Properties: map[string]*jsonschema.Schema{
			"question":                {Type: "string"},
			"type":                    {Type: "string", Enum: []any{"open", "multiple_choice", "multiple-choice"}},
			"options":                 {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			"previousResponseCorrect": {Type: "boolean"},
			"explanation":             {Type: "string"},
			"tag":                     {Type: "string"},
			"correctAnswer":           {Type: "string"},
			"difficulty":              {Type: "integer", Minimum: floatPtr(1), Maximum: floatPtr(10)},
			"factoid":                 {Type: "string"},
		},
	}
}

func mustResolve(s *jsonschema.Schema) *jsonschema.Resolved {
	resolved, err := s.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("resolve reply schema: %v", err))
	}
	return resolved
}

func floatPtr(v float64) *float64 {
	return &v
}

// decodeReply parses content and validates it against schema.
// Non-JSON content is a hard failure, schema violations are soft.
func decodeReply(content string, schema *jsonschema.Resolved) (Reply, error) {
	var raw any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Reply{}, &TransportError{Op: "decode reply", Err: err}
	}
	if err := schema.Validate(raw); err != nil {
		return Reply{}, invalid("%v", err)
	}
	var reply Reply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return Reply{}, invalid("%v", err)
	}
	return reply, nil
}

// ParseQuestion turns a question reply into the tagged question variant.
func ParseQuestion(content string) (model.Question, error) {
	reply, err := decodeReply(content, questionSchema)
	if err != nil {
		return model.Question{}, err
	}
	prompt := strings.TrimSpace(reply.Question)
	if prompt == "" {
		return model.Question{}, invalid("empty question text")
	}
	q := model.Question{
		ID:                 uuid.NewString(),
		Prompt:             prompt,
		Kind:               model.Open{},
		CorrectAnswer:      strings.TrimSpace(reply.CorrectAnswer),
		Explanation:        strings.TrimSpace(reply.Explanation),
		PriorAnswerCorrect: reply.PreviousResponseCorrect,
		Tag:                strings.TrimSpace(reply.Tag),
		Difficulty:         reply.Difficulty,
		Factoid:            strings.TrimSpace(reply.Factoid),
	}
	if reply.Type == "open" {
		return q, nil
	}
	options := make([]string, 0, len(reply.Options))
	for _, opt := range reply.Options {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	if len(options) == 0 {
		return model.Question{}, invalid("multiple choice question without options")
	}
	if q.CorrectAnswer == "" {
		return model.Question{}, invalid("multiple choice question without correct answer")
	}
	q.Kind = model.MultipleChoice{Options: options}
	return q, nil
}

// ParseVerdict extracts the correctness flag and explanation from a feedback reply.
func ParseVerdict(content string) (Verdict, error) {
	reply, err := decodeReply(content, feedbackSchema)
	if err != nil {
		return Verdict{}, err
	}
	if reply.PreviousResponseCorrect == nil {
		return Verdict{}, invalid("missing correctness flag")
	}
	explanation := strings.TrimSpace(reply.Explanation)
	if explanation == "" {
		return Verdict{}, invalid("empty explanation")
	}
	return Verdict{
		Correct:     *reply.PreviousResponseCorrect,
		Explanation: explanation,
		Factoid:     strings.TrimSpace(reply.Factoid),
		Tag:         strings.TrimSpace(reply.Tag),
		Difficulty:  reply.Difficulty,
	}, nil
}
