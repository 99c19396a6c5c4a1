package stats

import (
	"sort"

	"github.com/verte-zerg/studyquest/internal/model"
)

// WeakTopics returns up to top topic tags with at least one miss, lowest accuracy first.
func WeakTopics(aggs []model.TopicAggregate, top int) []string {
	candidates := make([]model.TopicAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := Accuracy(candidates[i])
		aj := Accuracy(candidates[j])
		if ai == aj {
			return candidates[i].Tag < candidates[j].Tag
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for i := 0; i < top; i++ {
		out = append(out, candidates[i].Tag)
	}
	return out
}
