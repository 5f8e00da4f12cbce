package model

import (
	"fmt"
	"strings"
)

// Difficulty is the recipe difficulty level. The zero value means unknown.
type Difficulty string

// Known difficulty levels.
const (
	DifficultyUnknown Difficulty = ""
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
)

// ParseDifficulty parses a difficulty level, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyUnknown:
		return DifficultyUnknown, nil
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return DifficultyUnknown, fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}

// IsKnown reports whether d is one of easy, medium or hard.
func (d Difficulty) IsKnown() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
