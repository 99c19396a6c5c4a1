package ai

import (
	"context"
	"sync"
	"testing"

	"github.com/verte-zerg/studyquest/internal/content"
	"github.com/verte-zerg/studyquest/internal/history"
	"github.com/verte-zerg/studyquest/internal/model"
)

func TestOfflineCompleterRoundTrip(t *testing.T) {
	cat, err := content.Builtin()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	client := NewClient(NewOfflineCompleter(cat), nil)
	log := history.New()
	ctx := context.Background()

	ex, err := client.RequestNextQuestion(ctx, log.Snapshot(), QuestionRequest{Intent: IntentStart, Topic: "science"})
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	if ex.Question.Tag != "Science" {
		t.Fatalf("expected science question, got tag %q", ex.Question.Tag)
	}
	log.RecordExchange(ex.Outgoing, ex.Incoming)

	fb, err := client.SubmitAnswer(ctx, log.Snapshot(), ex.Question.CorrectAnswer)
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if !fb.Verdict.Correct {
		t.Fatalf("expected correct verdict")
	}
	log.RecordExchange(fb.Outgoing, fb.Incoming)

	fb, err = client.SubmitAnswer(ctx, log.Snapshot(), "definitely wrong")
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if fb.Verdict.Correct {
		t.Fatalf("expected incorrect verdict")
	}
	if !history.Alternates(log.Snapshot()) {
		t.Fatalf("expected alternating history")
	}
}

func TestOfflineCompleterExhaustsPool(t *testing.T) {
	cat, err := content.Builtin()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	client := NewClient(NewOfflineCompleter(cat), nil)
	log := history.New()
	ctx := context.Background()
	total := 0
	for _, q := range cat.Quizzes() {
		total += len(q.Questions)
	}
	for i := 0; i < total; i++ {
		ex, err := client.RequestNextQuestion(ctx, log.Snapshot(), QuestionRequest{Intent: IntentNext, Topic: "math"})
		if err != nil {
			t.Fatalf("question %d: %v", i, err)
		}
		log.RecordExchange(ex.Outgoing, ex.Incoming)
	}
	_, err = client.RequestNextQuestion(ctx, log.Snapshot(), QuestionRequest{Intent: IntentNext, Topic: "math"})
	if !IsSoft(err) {
		t.Fatalf("expected end-of-content soft failure, got %v", err)
	}
}

func TestOfflineCompleterRejectsNonInstruction(t *testing.T) {
	cat, _ := content.Builtin()
	c := NewOfflineCompleter(cat)
	if _, err := c.Complete(context.Background(), []model.Turn{{Role: model.RoleUser, Content: "hello"}}); err == nil {
		t.Fatalf("expected error for plain text turn")
	}
}

func TestOfflineCompleterConcurrentComplete(t *testing.T) {
	cat, err := content.Builtin()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	completer := NewOfflineCompleter(cat)
	start, err := encodeInstruction(questionInstruction(IntentStart, "science"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if _, err := completer.Complete(context.Background(), []model.Turn{start}); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("complete: %v", err)
	}
}
