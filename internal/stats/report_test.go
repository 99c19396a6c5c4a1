package stats

import (
	"context"
	"testing"

	"github.com/verte-zerg/studyquest/internal/model"
	"github.com/verte-zerg/studyquest/internal/store"
)

func TestBuildReport(t *testing.T) {
	st, err := store.Open()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	records := []model.AnswerRecord{
		{Seq: 1, Question: "Q1", Tag: "Optics", Correct: true, Difficulty: 3},
		{Seq: 2, Question: "Q2", Tag: "Optics", Correct: false, Difficulty: 5},
		{Seq: 3, Question: "Q3", Tag: "Mechanics", Correct: true, Difficulty: 4},
	}
	for _, rec := range records {
		if err := st.RecordAnswer(ctx, rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	report, err := BuildReport(ctx, st)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Answers) != 3 || report.Answers[0].Question != "Q1" {
		t.Fatalf("unexpected answers %+v", report.Answers)
	}
	if len(report.Topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(report.Topics))
	}
	if len(report.WeakTopics) != 1 || report.WeakTopics[0] != "Optics" {
		t.Fatalf("unexpected weak topics %v", report.WeakTopics)
	}
	if len(report.Accuracy) != 3 || len(report.Difficulty) != 3 {
		t.Fatalf("expected one trend point per answer, got %q %q", report.Accuracy, report.Difficulty)
	}
}
