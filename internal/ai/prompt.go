package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/verte-zerg/studyquest/internal/model"
)

// SystemPrompt frames the collaborator as a quiz master with a fixed JSON reply contract.
const SystemPrompt = `You are a study assistant for high school students. Ask questions about the requested topic and
keep the student on topic. Adapt difficulty to how the student has been answering so far and never repeat a question
already asked in this conversation. If an answer is wrong, explain why in a fun, friendly way using lingo teens would
use. Use no profanity. Do not answer questions about topics high school students would not learn about.

Every user message is a JSON object with an "instruction" field:
- "start quiz": begin a quiz about "topic" and ask the first question.
- "new question": ask the next question about "topic".
- "give feedback": judge "answer" against the last question you asked.

ALWAYS respond with a single JSON object with these properties:
"question": string, the quiz question (required unless giving feedback).
"type": "open" or "multiple_choice".
"options": array of strings, the choices for multiple_choice questions, empty for open questions.
"correctAnswer": string, the exact text of the correct option (required for multiple_choice).
"previousResponseCorrect": boolean, whether the judged answer was correct (required when giving feedback).
"explanation": string, why the judged answer was right or wrong (required when giving feedback).
"tag": string, the subtopic of the question.
"difficulty": integer from 1 (easy) to 10 (hard).
"factoid": string, an optional short fun fact related to the question.`

const (
	instructionStart    = "start quiz"
	instructionNext     = "new question"
	instructionFeedback = "give feedback"
)

type instruction struct {
	Instruction string `json:"instruction"`
	Topic       string `json:"topic,omitempty"`
	Answer      string `json:"answer,omitempty"`
}

// Intent selects the instruction sent with a question request.
type Intent int

const (
	IntentStart Intent = iota
	IntentNext
)

func encodeInstruction(in instruction) (model.Turn, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return model.Turn{}, fmt.Errorf("failed to encode instruction: %w", err)
	}
	return model.Turn{Role: model.RoleUser, Content: string(data)}, nil
}

func questionInstruction(intent Intent, topic string) instruction {
	name := instructionNext
	if intent == IntentStart {
		name = instructionStart
	}
	return instruction{Instruction: name, Topic: strings.TrimSpace(topic)}
}

func decodeInstruction(content string) (instruction, bool) {
	var in instruction
	if err := json.Unmarshal([]byte(content), &in); err != nil {
		return instruction{}, false
	}
	return in, in.Instruction != ""
}
