package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/InternLink/portal-service/internal/util/logger"
)

// TextTranslator is implemented by the AWS Translate client.
type TextTranslator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

type TranslateHandler struct {
	translator TextTranslator
}

func NewTranslateHandler(t TextTranslator) *TranslateHandler {
	return &TranslateHandler{translator: t}
}

// Translate handles POST /api/translate.
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text           string `json:"text"`
		TargetLanguage string `json:"targetLanguage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" || req.TargetLanguage == "" {
		writeError(w, http.StatusBadRequest, "text and targetLanguage are required")
		return
	}
	if h.translator == nil {
		writeError(w, http.StatusServiceUnavailable, "translation is not configured")
		return
	}

	out, err := h.translator.Translate(r.Context(), req.Text, req.TargetLanguage)
	if err != nil {
		logger.Errorf("translation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Translation error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"translatedText": out})
}

// TranslatedContent handles GET /api/translated-content?lang=xx.
func (h *TranslateHandler) TranslatedContent(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		writeError(w, http.StatusBadRequest, "lang is required")
		return
	}
	if h.translator == nil {
		writeError(w, http.StatusServiceUnavailable, "translation is not configured")
		return
	}

	const sourceText = "Find your next job or internship on InternLink."
	out, err := h.translator.Translate(r.Context(), sourceText, lang)
	if err != nil {
		logger.Errorf("translation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Translation error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"translatedText": out})
}
