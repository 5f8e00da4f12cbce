package normalize

import (
	"strings"
	"time"

	"github.com/okian/reciperank/internal/domain/model"
)

// Completeness field weights. They sum to 1.
const (
	descriptionWeight  = 0.20
	ingredientsWeight  = 0.20
	instructionsWeight = 0.20
	imagesWeight       = 0.15
	nutritionWeight    = 0.10
	timingWeight       = 0.10
	categoryWeight     = 0.05
)

// Quality composition weights.
const (
	qualityRatingWeight       = 0.5
	qualityCompletenessWeight = 0.3
	qualityConfidenceWeight   = 0.2
)

// Engagement composition weights.
const (
	engagementRatingWeight    = 0.4
	engagementRatingsWeight   = 0.3
	engagementFavoritesWeight = 0.2
	engagementViewsWeight     = 0.1
)

// Trending composition weights.
const (
	trendingRecencyWeight = 0.6
	trendingRatingsWeight = 0.3
	trendingRatingWeight  = 0.1
)

// Completeness scores how much of a recipe's structure is filled in.
func Completeness(c *model.Candidate) float64 {
	if c == nil {
		return 0
	}
	var score float64
	if strings.TrimSpace(c.Description) != "" {
		score += descriptionWeight
	}
	if len(c.Ingredients) > 0 {
		score += ingredientsWeight
	}
	if len(c.Instructions) > 0 {
		score += instructionsWeight
	}
	if len(c.Images) > 0 {
		score += imagesWeight
	}
	if len(c.Nutrition) > 0 {
		score += nutritionWeight
	}
	if c.PrepTimeMinutes != nil || c.CookTimeMinutes != nil {
		score += timingWeight
	}
	if c.Difficulty != model.DifficultyUnknown || strings.TrimSpace(c.Cuisine) != "" {
		score += categoryWeight
	}
	return Clamp01(score)
}

// Quality combines system rating, completeness and confidence. A missing
// rating counts as 0 and a missing confidence as full confidence.
func Quality(systemRating *float64, completeness float64, confidence *float64) float64 {
	rating := 0.0
	if systemRating != nil {
		rating = *systemRating
	}
	conf := 1.0
	if confidence != nil {
		conf = Clamp01(*confidence)
	}
	return Clamp01(Rating(rating, DefaultMaxRating)*qualityRatingWeight +
		Clamp01(completeness)*qualityCompletenessWeight +
		conf*qualityConfidenceWeight)
}

// Engagement combines user rating, rating volume, favorites and views.
func Engagement(avgUserRating *float64, totalRatings, favoriteCount, viewCount int) float64 {
	rating := 0.0
	if avgUserRating != nil {
		rating = *avgUserRating
	}
	return Clamp01(Rating(rating, DefaultMaxRating)*engagementRatingWeight +
		Count(float64(totalRatings))*engagementRatingsWeight +
		Count(float64(favoriteCount))*engagementFavoritesWeight +
		Count(float64(viewCount))*engagementViewsWeight)
}

// Trending favors recent activity with a 7 day half-life. It backs the
// standalone trending helper, not the main ranking path.
func Trending(updatedAt, now time.Time, totalRatings int, avgRating *float64) float64 {
	rating := 0.0
	if avgRating != nil {
		rating = *avgRating
	}
	return Clamp01(Recency(updatedAt, now, TrendingHalfLifeDays)*trendingRecencyWeight +
		Count(float64(totalRatings))*trendingRatingsWeight +
		Rating(rating, DefaultMaxRating)*trendingRatingWeight)
}
