package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/studyquest/internal/content"
	"github.com/verte-zerg/studyquest/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Topic", "Accuracy", "Correct"}
	rows := [][]string{
		{"a", "97%", "12"},
		{"Algebra", "8%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Topic    Accuracy  Correct" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a             97%       12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Algebra        8%        3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestReviewLinesMarksAnswers(t *testing.T) {
	lines := ReviewLines([]model.AnswerRecord{
		{Question: "What is the capital of France?", Answer: "Paris", Correct: true},
		{Question: "Largest planet?", Answer: "Mars"},
	}, 12)
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "✓") || !strings.Contains(lines[1], "What is the…") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "✗") || !strings.Contains(lines[2], "Mars") {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}

func TestTopicLines(t *testing.T) {
	lines := TopicLines([]model.TopicAggregate{
		{Tag: "Algebra", Correct: 3, Incorrect: 1, CorrectDifficulty: 2.5, IncorrectDifficulty: 6},
	})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, want := range []string{"Algebra", "75%", "✓ 2.5", "✗ 6.0"} {
		if !strings.Contains(lines[1], want) {
			t.Fatalf("expected %q in %q", want, lines[1])
		}
	}
}

func TestRenderCatalog(t *testing.T) {
	var buf bytes.Buffer
	quizzes := []content.Quiz{{ID: "history", Title: "World History", Category: "History", Description: "Test your knowledge", Questions: make([]content.Question, 5)}}
	if err := RenderCatalog(&buf, quizzes, 0); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "World History") || !strings.Contains(out, "5") {
		t.Fatalf("unexpected catalog output %q", out)
	}
	buf.Reset()
	if err := RenderCatalog(&buf, nil, 0); err != nil || !strings.Contains(buf.String(), "No quizzes") {
		t.Fatalf("expected empty catalog message, got %q", buf.String())
	}
}
