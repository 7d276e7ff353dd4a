package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/InternLink/portal-service/internal/service"
	"github.com/InternLink/portal-service/internal/util/logger"
)

type OTPHandler struct {
	service *service.OTPService
}

func NewOTPHandler(svc *service.OTPService) *OTPHandler {
	return &OTPHandler{service: svc}
}

// SendOTP handles POST /api/send-otp.
func (h *OTPHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mobile string `json:"mobile"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if err := h.service.Issue(ctx, req.Mobile, req.Email); err != nil {
		var de *service.DeliveryError
		switch {
		case errors.Is(err, service.ErrNoDestination):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &de):
			logger.Warnf("OTP delivery failed channel=%s err=%v", de.Channel, de.Err)
			writeError(w, http.StatusInternalServerError, "Error sending OTP via "+de.Channel)
		default:
			logger.Errorf("OTP issue failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "OTP sent successfully"})
}

// VerifyOTP handles POST /api/verify-otp. The contact namespace is
// inferred from the contact value itself.
func (h *OTPHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Contact string `json:"contact"`
		OTP     string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Contact == "" || req.OTP == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "contact and otp are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, err := h.service.Verify(ctx, req.Contact, req.OTP)
	if err != nil {
		logger.Errorf("OTP verify failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Internal server error"})
		return
	}

	switch status {
	case service.StatusVerified:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "OTP verified"})
	case service.StatusExpired:
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "OTP expired"})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid OTP"})
	}
}

// CheckOTP handles POST /check-otp, the mobile-only variant where
// non-expiry is part of the lookup itself.
func (h *OTPHandler) CheckOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mobile string `json:"mobile"`
		OTP    string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Mobile == "" || req.OTP == "" {
		writeError(w, http.StatusBadRequest, "mobile and otp are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	valid, err := h.service.CheckMobile(ctx, req.Mobile, req.OTP)
	if err != nil {
		logger.Errorf("OTP check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !valid {
		writeError(w, http.StatusBadRequest, "Invalid OTP")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "OTP is valid"})
}
