// Package personalize applies a small bounded adjustment to a score from
// user-stated preferences.
package personalize

import (
	"math"
	"slices"
	"strings"

	"github.com/okian/reciperank/internal/domain/model"
)

// Boost bounds and steps.
const (
	MinFactor       = 0.9
	MaxFactor       = 1.1
	cuisineBonus    = 0.05
	difficultyBonus = 0.05
	dietaryPenalty  = 0.10
)

// Factor returns the multiplier for c under prefs, within [MinFactor, MaxFactor].
// Empty preferences give 1.
func Factor(c *model.Candidate, prefs *model.UserPreferences) float64 {
	if c == nil || prefs.IsEmpty() {
		return 1
	}
	factor := 1.0
	if c.Cuisine != "" && slices.ContainsFunc(prefs.FavoriteCuisines, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(c.Cuisine))
	}) {
		factor += cuisineBonus
	}
	if c.Difficulty.IsKnown() && slices.Contains(prefs.PreferredDifficulty, c.Difficulty) {
		factor += difficultyBonus
	}
	if len(prefs.DietaryRestrictions) > 0 && !matchesAnyRestriction(c.Tags, prefs.DietaryRestrictions) {
		factor -= dietaryPenalty
	}
	return math.Max(MinFactor, math.Min(MaxFactor, factor))
}

// Boost applies Factor to score and caps the result at 1.
func Boost(score float64, c *model.Candidate, prefs *model.UserPreferences) float64 {
	if prefs.IsEmpty() {
		return score
	}
	return math.Min(score*Factor(c, prefs), 1)
}

// matchesAnyRestriction reports whether a tag contains one of the
// restrictions, ignoring case. Blank restrictions are skipped; if nothing but
// blanks was given there is nothing to violate.
func matchesAnyRestriction(tags, restrictions []string) bool {
	checked := false
	for _, r := range restrictions {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		checked = true
		for _, tag := range tags {
			if strings.Contains(strings.ToLower(tag), r) {
				return true
			}
		}
	}
	return !checked
}
