package store

import (
	"context"
	"testing"
	"time"

	"github.com/verte-zerg/studyquest/internal/model"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return st
}

func TestRecordAndListAnswers(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	records := []model.AnswerRecord{
		{Seq: 2, Mode: model.ModeAdaptive, Topic: "science", Question: "Q2", Answer: "b", Tag: "Physics", Difficulty: 4, AnsweredAt: at.Add(time.Second)},
		{Seq: 1, Mode: model.ModeAdaptive, Topic: "science", Question: "Q1", Answer: "a", Correct: true, Explanation: "yes", Tag: "Physics", Difficulty: 2, AnsweredAt: at},
	}
	for _, rec := range records {
		if err := st.RecordAnswer(ctx, rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, err := st.ListAnswers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Question != "Q1" || got[1].Question != "Q2" {
		t.Fatalf("expected answers ordered by seq, got %+v", got)
	}
	first := got[0]
	if first.ID == "" || !first.Correct || first.Mode != model.ModeAdaptive || !first.AnsweredAt.Equal(at) {
		t.Fatalf("unexpected first record %+v", first)
	}
}

func TestTopicAggregates(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	records := []model.AnswerRecord{
		{Seq: 1, Tag: "Algebra", Correct: true, Difficulty: 2},
		{Seq: 2, Tag: "Algebra", Correct: true, Difficulty: 4},
		{Seq: 3, Tag: "Algebra", Correct: false, Difficulty: 6},
		{Seq: 4, Tag: "", Correct: false},
	}
	for _, rec := range records {
		if err := st.RecordAnswer(ctx, rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	aggs, err := st.TopicAggregates(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected 2 topics, got %+v", aggs)
	}
	algebra := aggs[0]
	if algebra.Tag != "Algebra" || algebra.Correct != 2 || algebra.Incorrect != 1 {
		t.Fatalf("unexpected algebra aggregate %+v", algebra)
	}
	if algebra.CorrectDifficulty != 3 || algebra.IncorrectDifficulty != 6 {
		t.Fatalf("unexpected difficulty averages %+v", algebra)
	}
	if aggs[1].Tag != UntaggedTopic || aggs[1].Total() != 1 || aggs[1].CorrectDifficulty != 0 {
		t.Fatalf("unexpected untagged aggregate %+v", aggs[1])
	}
}

func TestReset(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	if err := st.RecordAnswer(ctx, model.AnswerRecord{Seq: 1, Question: "Q"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := st.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, err := st.ListAnswers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty ledger, got %d", len(got))
	}
}
