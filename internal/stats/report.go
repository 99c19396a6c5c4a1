package stats

import (
	"context"

	"github.com/verte-zerg/studyquest/internal/model"
	"github.com/verte-zerg/studyquest/internal/store"
)

const (
	weakTopicCount = 3
	trendWindow    = 3
)

// Report contains precomputed data for the results view.
type Report struct {
	Answers    []model.AnswerRecord
	Topics     []model.TopicAggregate
	WeakTopics []string
	Accuracy   string
	Difficulty string
}

// BuildReport loads the session's answers from the ledger and summarizes them.
func BuildReport(ctx context.Context, st *store.Store) (Report, error) {
	answers, err := st.ListAnswers(ctx)
	if err != nil {
		return Report{}, err
	}
	topics, err := st.TopicAggregates(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Answers:    answers,
		Topics:     topics,
		WeakTopics: WeakTopics(topics, weakTopicCount),
		Accuracy:   AccuracyTrend(answers, trendWindow),
		Difficulty: DifficultyTrend(answers),
	}, nil
}
