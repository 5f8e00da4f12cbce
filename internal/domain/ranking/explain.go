package ranking

import (
	"fmt"
	"strings"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/normalize"
	"github.com/okian/reciperank/internal/domain/scoring"
)

// Explain renders how a ranked candidate's score was built from its
// components under w. Candidates ranked without a breakdown only show the
// final score.
func Explain(rc model.RankedCandidate, w scoring.Weights) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score breakdown for %s:\n", label(rc.Candidate))
	if rc.ScoreComponents == nil {
		fmt.Fprintf(&b, "  final score: %.4f (no component breakdown)\n", rc.RankingScore)
		return b.String()
	}

	comp := rc.ScoreComponents
	rows := []struct {
		name   string
		value  float64
		weight float64
	}{
		{"similarity", comp.Similarity, w.Similarity},
		{"quality", comp.Quality, w.Quality},
		{"engagement", comp.Engagement, w.Engagement},
		{"recency", comp.Recency, w.Recency},
	}
	var base float64
	for _, r := range rows {
		contribution := r.value * r.weight
		base += contribution
		fmt.Fprintf(&b, "  %-10s %.4f x %.2f = %.4f\n", r.name, r.value, r.weight, contribution)
	}
	base = normalize.Clamp01(base)
	fmt.Fprintf(&b, "  base score: %.4f\n", base)
	if adj := rc.RankingScore - base; adj > 1e-12 || adj < -1e-12 {
		fmt.Fprintf(&b, "  personalization: %+.4f\n", adj)
	}
	fmt.Fprintf(&b, "  final score: %.4f\n", rc.RankingScore)
	return b.String()
}

func label(c model.Candidate) string {
	switch {
	case c.Title != "" && c.ID != "":
		return fmt.Sprintf("%q (%s)", c.Title, c.ID)
	case c.Title != "":
		return fmt.Sprintf("%q", c.Title)
	case c.ID != "":
		return c.ID
	}
	return "candidate"
}
