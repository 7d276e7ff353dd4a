package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/InternLink/portal-service/internal/models"
	"github.com/InternLink/portal-service/internal/repository"
	"github.com/InternLink/portal-service/internal/util"
	"github.com/InternLink/portal-service/internal/util/logger"
)

// ListingsHandler is plain persistence glue: bodies are written as sent.
// The one guarded operation is the application status update, which must
// reject anything outside the fixed enumeration before touching the row.
type ListingsHandler struct {
	store repository.ListingStore
	clock util.Clock
}

func NewListingsHandler(store repository.ListingStore, clock util.Clock) *ListingsHandler {
	return &ListingsHandler{store: store, clock: clock}
}

func (h *ListingsHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var a models.Application
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a.ID = uuid.New()
	a.CreatedAt = h.clock.Now()
	if a.Status == "" {
		a.Status = models.StatusPending
	}
	if err := h.store.CreateApplication(r.Context(), &a); err != nil {
		logger.Errorf("save application failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Error saving application data")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ListingsHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.ListApplications(r.Context())
	if err != nil {
		logger.Errorf("list applications failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if out == nil {
		out = []models.Application{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ListingsHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.store.GetApplication(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Application not found")
		return
	}
	if err != nil {
		logger.Errorf("get application failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ListingsHandler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		Status models.ApplicationStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	a, err := h.store.UpdateApplicationStatus(r.Context(), id, req.Status)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Application not found")
		return
	}
	if err != nil {
		logger.Errorf("update application status failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ListingsHandler) CreateInternship(w http.ResponseWriter, r *http.Request) {
	var in models.Internship
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.ID = uuid.New()
	in.CreatedAt = h.clock.Now()
	if err := h.store.CreateInternship(r.Context(), &in); err != nil {
		logger.Errorf("save internship failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Error saving internship data")
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *ListingsHandler) ListInternships(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.ListInternships(r.Context())
	if err != nil {
		logger.Errorf("list internships failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if out == nil {
		out = []models.Internship{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ListingsHandler) GetInternship(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, err := h.store.GetInternship(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Internship not found")
		return
	}
	if err != nil {
		logger.Errorf("get internship failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *ListingsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var j models.Job
	if err := json.NewDecoder(r.Body).Decode(&j); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	j.ID = uuid.New()
	j.CreatedAt = h.clock.Now()
	if err := h.store.CreateJob(r.Context(), &j); err != nil {
		logger.Errorf("save job failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Error saving job data")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *ListingsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.ListJobs(r.Context())
	if err != nil {
		logger.Errorf("list jobs failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if out == nil {
		out = []models.Job{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ListingsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	j, err := h.store.GetJob(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		logger.Errorf("get job failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
