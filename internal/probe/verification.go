package probe

import (
	"fmt"

	"github.com/okian/reciperank/internal/domain/model"
)

// verifyResponse checks that resp ranks exactly the unique candidates sent,
// highest score first, with 1-based contiguous ranks and scores in [0, 1].
func verifyResponse(sent []model.Candidate, resp rankResponse) error {
	want := make(map[string]struct{}, len(sent))
	for _, c := range sent {
		want[c.ID] = struct{}{}
	}
	if resp.Count != len(resp.Results) {
		return fmt.Errorf("count %d does not match %d results", resp.Count, len(resp.Results))
	}
	if len(resp.Results) != len(want) {
		return fmt.Errorf("got %d results for %d unique candidates", len(resp.Results), len(want))
	}

	seen := make(map[string]struct{}, len(resp.Results))
	for i, e := range resp.Results {
		if e.Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d", i, e.Rank)
		}
		if e.Score < 0 || e.Score > 1 {
			return fmt.Errorf("entry %s has score %.4f outside [0,1]", e.ID, e.Score)
		}
		if i > 0 && e.Score > resp.Results[i-1].Score {
			return fmt.Errorf("entry %d scores higher than entry %d", i, i-1)
		}
		if _, ok := want[e.ID]; !ok {
			return fmt.Errorf("unexpected id %s", e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("id %s ranked twice", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
