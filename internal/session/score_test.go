package session

import "testing"

func TestTrackerRefusesPastTarget(t *testing.T) {
	tr := NewTracker(2)
	if !tr.RecordAnswer(true) || !tr.RecordAnswer(false) {
		t.Fatalf("expected answers within target to be counted")
	}
	if tr.RecordAnswer(true) {
		t.Fatalf("expected answer past target to be refused")
	}
	s := tr.Score()
	if s.Answered != 2 || s.Correct != 1 || s.Target != 2 {
		t.Fatalf("unexpected score %+v", s)
	}
	if !tr.IsComplete() {
		t.Fatalf("expected complete")
	}
}

func TestTrackerCountsAreMonotonic(t *testing.T) {
	tr := NewTracker(10)
	prev := tr.Score()
	for i := 0; i < 15; i++ {
		tr.RecordAnswer(i%3 == 0)
		s := tr.Score()
		if s.Answered < prev.Answered || s.Correct < prev.Correct {
			t.Fatalf("score went backwards: %+v -> %+v", prev, s)
		}
		if s.Correct > s.Answered || s.Answered > s.Target {
			t.Fatalf("score out of bounds: %+v", s)
		}
		prev = s
	}
}

func TestQuestionTarget(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 5: 5, MaxQuestions: MaxQuestions, 500: MaxQuestions}
	for in, want := range cases {
		if got := QuestionTarget(in); got != want {
			t.Fatalf("QuestionTarget(%d) = %d, want %d", in, got, want)
		}
	}
}
