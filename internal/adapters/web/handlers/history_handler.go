package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// HistoryReader is the read side of the session journal
type HistoryReader interface {
	History(ctx context.Context, limit int) (domain.History, error)
}

// HistoryHandler serves the session journal
type HistoryHandler struct {
	Journal HistoryReader
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(journal HistoryReader) *HistoryHandler {
	return &HistoryHandler{Journal: journal}
}

// HandleGetHistory returns the most recent ticks and the alert sightings
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	history, err := h.Journal.History(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to fetch history: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, strconv.ErrSyntax
	}
	if n > maxHistoryLimit {
		n = maxHistoryLimit
	}
	return n, nil
}
