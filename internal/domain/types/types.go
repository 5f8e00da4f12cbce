// Package types contains wire types shared by the API, the service and the probe CLI.
package types

import (
	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/scoring"
)

// Entry is the compact form of a ranked candidate.
type Entry struct {
	Rank  int     `json:"rank" cbor:"rank"`
	ID    string  `json:"id" cbor:"id"`
	Title string  `json:"title,omitempty" cbor:"title,omitempty"`
	Score float64 `json:"score" cbor:"score"`
}

// Entries converts ranked candidates into 1-based compact entries.
func Entries(ranked []model.RankedCandidate) []Entry {
	out := make([]Entry, len(ranked))
	for i, rc := range ranked {
		out[i] = Entry{Rank: i + 1, ID: rc.ID, Title: rc.Title, Score: rc.RankingScore}
	}
	return out
}

// ModeInfo describes a ranking mode and its preset weights.
type ModeInfo struct {
	Name    string          `json:"name" cbor:"name"`
	Weights scoring.Weights `json:"weights" cbor:"weights"`
}

// Modes lists every ranking mode in declaration order.
func Modes() []ModeInfo {
	modes := scoring.Modes()
	out := make([]ModeInfo, len(modes))
	for i, m := range modes {
		out[i] = ModeInfo{Name: m.String(), Weights: m.Weights()}
	}
	return out
}
