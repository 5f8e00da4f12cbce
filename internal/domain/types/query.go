package types

import (
	"time"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/scoring"
)

// Query holds the ranking options a client sent. Empty fields fall back to
// the service defaults.
type Query struct {
	Mode                string                   `json:"mode,omitempty" cbor:"mode,omitempty"`
	Weights             *scoring.WeightOverrides `json:"weights,omitempty" cbor:"weights,omitempty"`
	Preferences         *model.UserPreferences   `json:"user_preferences,omitempty" cbor:"user_preferences,omitempty"`
	IncludeBreakdown    bool                     `json:"include_breakdown,omitempty" cbor:"include_breakdown,omitempty"`
	RecencyHalfLifeDays float64                  `json:"recency_half_life_days,omitempty" cbor:"recency_half_life_days,omitempty"`
	Now                 time.Time                `json:"now,omitzero" cbor:"now,omitempty"`
}

// Hit is one result of an upstream vector search.
type Hit struct {
	ID         string  `json:"id" cbor:"id"`
	Similarity float64 `json:"similarity" cbor:"similarity"`
}
