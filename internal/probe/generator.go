package probe

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/okian/reciperank/internal/domain/model"
)

const randomFloatDivisor = 1_000_000

var (
	cuisines     = []string{"italian", "mexican", "thai", "french", "indian", "japanese"}
	difficulties = []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard, model.DifficultyUnknown}
	tagPool      = []string{"vegan", "vegetarian", "gluten-free", "quick", "spicy", "dairy-free"}
)

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomInt(n int) int {
	if n <= 0 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateLists creates count candidate lists of size n with unique recipe IDs.
func generateLists(count, n int, now time.Time) [][]model.Candidate {
	lists := make([][]model.Candidate, count)
	for i := range lists {
		lists[i] = make([]model.Candidate, n)
		for j := range lists[i] {
			lists[i][j] = generateCandidate(now)
		}
	}
	return lists
}

// generateCandidate builds a recipe with a random mix of present and absent signals.
func generateCandidate(now time.Time) model.Candidate {
	c := model.Candidate{
		ID:         uuid.New().String(),
		Title:      "Probe recipe",
		Similarity: getRandomFloat(),
		Cuisine:    cuisines[randomInt(len(cuisines))],
		Difficulty: difficulties[randomInt(len(difficulties))],
		CreatedAt:  now.Add(-time.Duration(randomInt(365*24)) * time.Hour),
	}
	if getRandomFloat() < 0.8 {
		rating := 5 * getRandomFloat()
		c.SystemRating = &rating
	}
	if getRandomFloat() < 0.6 {
		conf := getRandomFloat()
		c.ConfidenceScore = &conf
	}
	if getRandomFloat() < 0.5 {
		avg := 1 + 4*getRandomFloat()
		c.AvgUserRating = &avg
		c.TotalUserRatings = randomInt(500)
	}
	if getRandomFloat() < 0.7 {
		c.Description = "Generated for load probing."
		c.Ingredients = []string{"salt", "water"}
		c.Instructions = []string{"Combine.", "Serve."}
	}
	c.Tags = []string{tagPool[randomInt(len(tagPool))]}
	return c
}
