package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/ranking"
	"github.com/okian/reciperank/internal/domain/scoring"
	"github.com/okian/reciperank/internal/domain/types"
)

type explainRequest struct {
	ID         string            `json:"id" cbor:"id"`
	Candidates []model.Candidate `json:"candidates" cbor:"candidates"`
	types.Query
}

type explainResponse struct {
	ID          string                 `json:"id" cbor:"id"`
	Rank        int                    `json:"rank" cbor:"rank"`
	Score       float64                `json:"score" cbor:"score"`
	Components  *model.ScoreComponents `json:"score_components,omitempty" cbor:"score_components,omitempty"`
	Weights     scoring.Weights        `json:"weights" cbor:"weights"`
	Explanation string                 `json:"explanation" cbor:"explanation"`
}

// HandleExplain handles POST /explain requests. The candidates are ranked with
// the given options and the breakdown for id is returned.
func (h *RankHandler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	const op = "api.explain"
	var req explainRequest
	h.serve(w, r, op, explainSchema, &req, func(ctx context.Context) (any, error) {
		if err := h.checkCount(len(req.Candidates)); err != nil {
			return nil, err
		}
		q := req.Query
		q.IncludeBreakdown = true
		res, err := h.deps.Rank(ctx, req.Candidates, q)
		if err != nil {
			return nil, err
		}
		for i, rc := range res.Candidates {
			if rc.ID != req.ID {
				continue
			}
			return explainResponse{
				ID:          rc.ID,
				Rank:        i + 1,
				Score:       rc.RankingScore,
				Components:  rc.ScoreComponents,
				Weights:     res.Weights,
				Explanation: ranking.Explain(rc, res.Weights),
			}, nil
		}
		return nil, fmt.Errorf("%w: candidate %q", ErrNotFound, req.ID)
	})
}
