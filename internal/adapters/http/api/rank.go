package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/ranking"
	"github.com/okian/reciperank/internal/domain/scoring"
	"github.com/okian/reciperank/internal/domain/types"
	"github.com/okian/reciperank/pkg/logger"
)

type rankRequest struct {
	Candidates []model.Candidate `json:"candidates" cbor:"candidates"`
	types.Query
	Compact bool `json:"compact,omitempty" cbor:"compact,omitempty"`
}

type resultSet struct {
	Name       string            `json:"name" cbor:"name"`
	Weight     float64           `json:"weight" cbor:"weight"`
	Candidates []model.Candidate `json:"candidates" cbor:"candidates"`
}

type mergeRequest struct {
	ResultSets []resultSet `json:"result_sets" cbor:"result_sets"`
	types.Query
	Compact bool `json:"compact,omitempty" cbor:"compact,omitempty"`
}

type hitsRequest struct {
	Hits []types.Hit `json:"hits" cbor:"hits"`
	types.Query
	Compact bool `json:"compact,omitempty" cbor:"compact,omitempty"`
}

// rankResponse carries either full ranked candidates or compact entries.
type rankResponse struct {
	Results  any             `json:"results" cbor:"results"`
	Count    int             `json:"count" cbor:"count"`
	Weights  scoring.Weights `json:"weights" cbor:"weights"`
	Warnings []string        `json:"warnings,omitempty" cbor:"warnings,omitempty"`
	Missing  []string        `json:"missing,omitempty" cbor:"missing,omitempty"`
}

// RankHandler handles the ranking endpoints.
type RankHandler struct {
	deps            Dependencies
	cache           Cache
	maxCandidates   int
	maxRequestBytes int64
	logger          logger.Logger
}

// HandleRank handles POST /rank requests.
func (h *RankHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank"
	var req rankRequest
	h.serve(w, r, op, rankSchema, &req, func(ctx context.Context) (any, error) {
		if err := h.checkCount(len(req.Candidates)); err != nil {
			return nil, err
		}
		res, err := h.deps.Rank(ctx, req.Candidates, req.Query)
		if err != nil {
			return nil, err
		}
		return newRankResponse(res, req.Compact, nil), nil
	})
}

// HandleMerge handles POST /rank/merge requests.
func (h *RankHandler) HandleMerge(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank_merge"
	var req mergeRequest
	h.serve(w, r, op, mergeSchema, &req, func(ctx context.Context) (any, error) {
		sets := make([]ranking.ResultSet, len(req.ResultSets))
		total := 0
		for i, s := range req.ResultSets {
			sets[i] = ranking.ResultSet{Name: s.Name, Weight: s.Weight, Candidates: s.Candidates}
			total += len(s.Candidates)
		}
		if err := h.checkCount(total); err != nil {
			return nil, err
		}
		res, err := h.deps.MergeAndRank(ctx, sets, req.Query)
		if err != nil {
			return nil, err
		}
		return newRankResponse(res, req.Compact, nil), nil
	})
}

// HandleHits handles POST /rank/hits requests.
func (h *RankHandler) HandleHits(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank_hits"
	var req hitsRequest
	h.serve(w, r, op, hitsSchema, &req, func(ctx context.Context) (any, error) {
		if err := h.checkCount(len(req.Hits)); err != nil {
			return nil, err
		}
		res, missing, err := h.deps.RankHits(ctx, req.Hits, req.Query)
		if err != nil {
			return nil, err
		}
		return newRankResponse(res, req.Compact, missing), nil
	})
}

func newRankResponse(res ranking.Result, compact bool, missing []string) rankResponse {
	out := rankResponse{
		Count:   len(res.Candidates),
		Weights: res.Weights,
		Missing: missing,
	}
	if compact {
		out.Results = types.Entries(res.Candidates)
	} else {
		out.Results = res.Candidates
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	return out
}

func (h *RankHandler) checkCount(n int) error {
	if n > h.maxCandidates {
		return fmt.Errorf("%w: %d candidates exceeds the limit of %d", ErrBadRequest, n, h.maxCandidates)
	}
	return nil
}

// serve runs the shared request pipeline: method and media type checks,
// bounded body read, cache lookup, schema validation, decoding, run, and
// encoding in the format the client accepts.
func (h *RankHandler) serve(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	schema *gojsonschema.Schema,
	dst any,
	run func(ctx context.Context) (any, error),
) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	cborBody, err := requestIsCBOR(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrUnsupportedType, err))
		return
	}
	body, err := readBody(w, r, h.maxRequestBytes)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	asCBOR := wantsCBOR(r)
	var key string
	if h.cache != nil {
		key = cacheKey(r.URL.Path, cborBody, asCBOR, body)
		if cached, ok := h.cache.Get(ctx, key); ok {
			w.Header().Set("X-Cache", "HIT")
			writeEncoded(w, http.StatusOK, cached, asCBOR)
			return
		}
	}

	if err := decode(body, cborBody, schema, dst); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	out, err := run(ctx)
	if err != nil {
		h.logger.Debug(ctx, "request failed", logger.String("op", op), logger.Error(err))
		writeFailure(w, fmt.Errorf("%s: %w", op, err))
		return
	}

	encoded, contentType, err := encode(out, asCBOR)
	if err != nil {
		h.logger.Error(ctx, "encode response", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if h.cache != nil {
		w.Header().Set("X-Cache", "MISS")
		h.cache.Set(ctx, key, encoded)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(encoded)
}

// requestIsCBOR reports the body format. An absent Content-Type means JSON.
func requestIsCBOR(r *http.Request) (bool, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false, err
	}
	switch mt {
	case contentTypeJSON:
		return false, nil
	case contentTypeCBOR:
		return true, nil
	}
	return false, fmt.Errorf("%q", mt)
}

func cacheKey(path string, cborBody, cborOut bool, body []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s\x00%t\x00%t\x00", path, cborBody, cborOut)
	_, _ = h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func writeEncoded(w http.ResponseWriter, status int, body []byte, asCBOR bool) {
	if asCBOR {
		w.Header().Set("Content-Type", contentTypeCBOR)
	} else {
		w.Header().Set("Content-Type", contentTypeJSON+"; charset=utf-8")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// trendingRequest mirrors the OpenAPI schema for POST /trending.
type trendingRequest struct {
	Candidates []model.Candidate `json:"candidates" cbor:"candidates"`
	Limit      int               `json:"limit,omitempty" cbor:"limit,omitempty"`
	Now        time.Time         `json:"now,omitzero" cbor:"now,omitempty"`
}

type trendingResponse struct {
	Results []model.RankedCandidate `json:"results" cbor:"results"`
	Count   int                     `json:"count" cbor:"count"`
}

// HandleTrending handles POST /trending requests.
func (h *RankHandler) HandleTrending(w http.ResponseWriter, r *http.Request) {
	const op = "api.trending"
	var req trendingRequest
	h.serve(w, r, op, trendingSchema, &req, func(ctx context.Context) (any, error) {
		if err := h.checkCount(len(req.Candidates)); err != nil {
			return nil, err
		}
		out := h.deps.Trending(ctx, req.Candidates, req.Now, req.Limit)
		return trendingResponse{Results: out, Count: len(out)}, nil
	})
}
