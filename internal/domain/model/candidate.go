// Package model contains domain models passed between layers.
package model

import "time"

// Candidate is a recipe record plus the similarity it was retrieved with.
// Collections arrive already parsed; decoding happens at the storage boundary.
type Candidate struct {
	ID         string  `json:"id"`
	Title      string  `json:"title,omitempty"`
	Similarity float64 `json:"similarity"` // upstream relevance, expected in [0,1]

	// Quality inputs.
	SystemRating    *float64 `json:"system_rating,omitempty"`    // 0-5
	ConfidenceScore *float64 `json:"confidence_score,omitempty"` // 0-1

	// Structural completeness inputs.
	Description     string         `json:"description,omitempty"`
	Ingredients     []string       `json:"ingredients,omitempty"`
	Instructions    []string       `json:"instructions,omitempty"`
	Images          []string       `json:"images,omitempty"`
	Nutrition       map[string]any `json:"nutrition_info,omitempty"`
	PrepTimeMinutes *int           `json:"prep_time,omitempty"`
	CookTimeMinutes *int           `json:"cook_time,omitempty"`
	Difficulty      Difficulty     `json:"difficulty,omitempty"`
	Cuisine         string         `json:"cuisine,omitempty"`

	// Engagement inputs.
	AvgUserRating    *float64 `json:"avg_user_rating,omitempty"` // 0-5
	TotalUserRatings int      `json:"total_user_ratings,omitempty"`
	FavoriteCount    int      `json:"favorite_count,omitempty"`
	ViewCount        int      `json:"view_count,omitempty"`

	// Recency inputs. Zero values mean absent.
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`

	Tags []string `json:"tags,omitempty"`

	// Attributes carries fields the engine does not read.
	Attributes map[string]any `json:"attributes,omitempty"`
}

// FreshnessTime returns UpdatedAt, falling back to CreatedAt.
func (c *Candidate) FreshnessTime() time.Time {
	if !c.UpdatedAt.IsZero() {
		return c.UpdatedAt
	}
	return c.CreatedAt
}

// ScoreComponents are the normalized sub-scores combined into a final score.
type ScoreComponents struct {
	Similarity float64 `json:"similarity"`
	Quality    float64 `json:"quality"`
	Engagement float64 `json:"engagement"`
	Recency    float64 `json:"recency"`
}

// RankedCandidate is a Candidate with its final ranking score.
type RankedCandidate struct {
	Candidate
	RankingScore    float64          `json:"ranking_score"`
	ScoreComponents *ScoreComponents `json:"score_components,omitempty"`
}

// UserPreferences are optional per-request personalization inputs.
type UserPreferences struct {
	FavoriteCuisines    []string     `json:"favorite_cuisines,omitempty"`
	PreferredDifficulty []Difficulty `json:"preferred_difficulty,omitempty"`
	DietaryRestrictions []string     `json:"dietary_restrictions,omitempty"`
}

// IsEmpty reports whether no preference is set.
func (p *UserPreferences) IsEmpty() bool {
	return p == nil ||
		(len(p.FavoriteCuisines) == 0 && len(p.PreferredDifficulty) == 0 && len(p.DietaryRestrictions) == 0)
}
