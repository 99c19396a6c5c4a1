// Package stats contains results calculations and reporting.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/studyquest/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Percentage returns correct/total as a rounded whole percentage.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Accuracy returns the correct share of a topic aggregate, 1 when it has no answers.
func Accuracy(agg model.TopicAggregate) float64 {
	total := agg.Total()
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := range values {
		sum += values[i]
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders values on a fixed 0..max scale.
func Sparkline(values []float64, max float64) string {
	if len(values) == 0 || max <= 0 {
		return ""
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round(v / max * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// AccuracyTrend renders the rolling accuracy across answers in order.
func AccuracyTrend(records []model.AnswerRecord, window int) string {
	values := make([]float64, len(records))
	for i, rec := range records {
		if rec.Correct {
			values[i] = 1
		}
	}
	return Sparkline(MovingAverage(values, window), 1)
}

// DifficultyTrend renders rated difficulty across answers. Unrated answers are skipped.
func DifficultyTrend(records []model.AnswerRecord) string {
	var values []float64
	for _, rec := range records {
		if rec.Difficulty > 0 {
			values = append(values, float64(rec.Difficulty))
		}
	}
	return Sparkline(values, 10)
}
