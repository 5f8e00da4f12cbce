package ranking

import (
	"fmt"
	"math"

	"github.com/okian/reciperank/internal/domain/model"
)

// ResultSet is the output of one retrieval strategy and how much it is trusted.
type ResultSet struct {
	Name       string
	Weight     float64
	Candidates []model.Candidate
}

// Merge fuses result sets into one candidate list. Set weights are normalized
// to sum to 1. Each candidate's similarity becomes the sum of
// similarity*weight over every set it appears in. The first occurrence
// provides the record; later ones only add similarity. Output follows
// first-seen order. Candidates without an ID are never merged.
func Merge(sets []ResultSet) ([]model.Candidate, []error) {
	weights, warn := normalizeSetWeights(sets)
	var warnings []error
	if warn != nil {
		warnings = append(warnings, warn)
	}

	var total int
	for _, s := range sets {
		total += len(s.Candidates)
	}
	merged := make([]model.Candidate, 0, total)
	index := make(map[string]int, total)

	for si, set := range sets {
		w := weights[si]
		for ci := range set.Candidates {
			c := &set.Candidates[ci]
			contribution := c.Similarity * w
			if c.ID != "" {
				if pos, ok := index[c.ID]; ok {
					merged[pos].Similarity += contribution
					continue
				}
				index[c.ID] = len(merged)
			}
			seeded := *c
			seeded.Similarity = contribution
			merged = append(merged, seeded)
		}
	}
	return merged, warnings
}

func normalizeSetWeights(sets []ResultSet) ([]float64, error) {
	weights := make([]float64, len(sets))
	var sum float64
	for i, s := range sets {
		if s.Weight > 0 && !math.IsInf(s.Weight, 1) {
			weights[i] = s.Weight
			sum += s.Weight
		}
	}
	if len(sets) == 0 {
		return weights, nil
	}
	if sum <= 0 || math.IsInf(sum, 0) {
		equal := 1 / float64(len(sets))
		for i := range weights {
			weights[i] = equal
		}
		return weights, fmt.Errorf("%w: %d sets", ErrDegenerateSetWeights, len(sets))
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights, nil
}
