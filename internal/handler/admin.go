package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/golang-jwt/jwt/v4"

	"github.com/InternLink/portal-service/internal/config"
	"github.com/InternLink/portal-service/internal/util"
	"github.com/InternLink/portal-service/internal/util/logger"
)

// AdminHandler checks the static admin credential pair from config and
// mints a short-lived HS256 token on success.
type AdminHandler struct {
	cfg   config.AdminConfig
	clock util.Clock
}

func NewAdminHandler(cfg config.AdminConfig, clock util.Clock) *AdminHandler {
	return &AdminHandler{cfg: cfg, clock: clock}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.Password)) == 1
	if !userOK || !passOK {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	now := h.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.cfg.TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.TokenSecret))
	if err != nil {
		logger.Errorf("admin token signing failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Admin is here",
		"token":   token,
	})
}
