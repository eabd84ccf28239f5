package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves GET /healthz
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Store ping failed")
		respondJSON(w, healthResponse{Status: "unavailable", Store: err.Error()}, http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, healthResponse{Status: "ok", Store: "ok"}, http.StatusOK)
}
