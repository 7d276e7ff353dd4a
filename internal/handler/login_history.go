package handler

import (
	"net/http"

	"github.com/InternLink/portal-service/internal/models"
	"github.com/InternLink/portal-service/internal/repository"
	"github.com/InternLink/portal-service/internal/util/logger"
)

type LoginHistoryHandler struct {
	store repository.LoginHistoryStore
}

func NewLoginHistoryHandler(store repository.LoginHistoryStore) *LoginHistoryHandler {
	return &LoginHistoryHandler{store: store}
}

// List handles GET /api/login-history, newest first.
func (h *LoginHistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListNewestFirst(r.Context())
	if err != nil {
		logger.Errorf("login history retrieval failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if entries == nil {
		entries = []models.LoginRecord{}
	}
	writeJSON(w, http.StatusOK, entries)
}
