package api

import (
	"net/http"

	"github.com/okian/reciperank/internal/domain/types"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}

// ModesHandler lists the ranking modes.
type ModesHandler struct {
	modes []types.ModeInfo
}

// NewModesHandler creates a modes handler.
func NewModesHandler() *ModesHandler {
	return &ModesHandler{modes: types.Modes()}
}

// HandleModes handles GET /modes requests.
func (h *ModesHandler) HandleModes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.modes)
}
