package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/findosh/showroom/internal/models"
	"github.com/findosh/showroom/internal/storage"
	"github.com/google/uuid"
)

type contactRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	VehicleID string `json:"vehicleId"`
}

// CreateContact stores a message from the public contact form
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if blank(req.Name) || blank(req.Phone) || blank(req.Message) || !validEmail(req.Email) {
		h.jsonError(w, "name, a valid email, phone and message are required", http.StatusBadRequest)
		return
	}

	var vehicleID *uuid.UUID
	if !blank(req.VehicleID) {
		id, err := uuid.Parse(strings.TrimSpace(req.VehicleID))
		if err != nil {
			h.jsonError(w, "invalid vehicleId", http.StatusBadRequest)
			return
		}
		// A message about a vehicle that has since been removed is kept
		// without the reference.
		vehicle, err := h.vehicles.GetByID(r.Context(), id)
		if err != nil {
			h.serverError(w, r, err, "failed to load vehicle")
			return
		}
		if vehicle != nil {
			vehicleID = &id
		}
	}

	contact := models.NewContact(
		strings.TrimSpace(req.Name),
		req.Email,
		strings.TrimSpace(req.Phone),
		strings.TrimSpace(req.Message),
		vehicleID,
	)
	if err := h.contacts.Create(r.Context(), contact); err != nil {
		h.serverError(w, r, err, "failed to create contact")
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

// ListContacts returns all contacts, newest first
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context())
	if err != nil {
		h.serverError(w, r, err, "failed to list contacts")
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

// GetContact returns one contact
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "contact")
	if !ok {
		return
	}

	contact, err := h.contacts.GetByID(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err, "failed to load contact")
		return
	}
	if contact == nil {
		h.notFound(w, "contact")
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// MarkContactRead flags a contact as read and returns it
func (h *Handler) MarkContactRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "contact")
	if !ok {
		return
	}

	err := h.contacts.MarkRead(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(w, "contact")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "failed to mark contact read")
		return
	}

	h.GetContact(w, r)
}

// DeleteContact removes a contact
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "contact")
	if !ok {
		return
	}

	err := h.contacts.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(w, "contact")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "failed to delete contact")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "contact deleted"})
}

// UnreadContacts returns {"count": n}
func (h *Handler) UnreadContacts(w http.ResponseWriter, r *http.Request) {
	count, err := h.contacts.UnreadCount(r.Context())
	if err != nil {
		h.serverError(w, r, err, "failed to count contacts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

type evaluationRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Year        int     `json:"year"`
	Mileage     *int    `json:"mileage"`
	Description *string `json:"description"`
}

// CreateEvaluation stores a trade-in evaluation request
func (h *Handler) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	var req evaluationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if blank(req.Name) || blank(req.Phone) || blank(req.Brand) || blank(req.Model) ||
		req.Year == 0 || req.Mileage == nil || *req.Mileage < 0 || !validEmail(req.Email) {
		h.jsonError(w, "name, a valid email, phone, brand, model, year and mileage are required", http.StatusBadRequest)
		return
	}

	evaluation := models.NewEvaluation(
		strings.TrimSpace(req.Name),
		req.Email,
		strings.TrimSpace(req.Phone),
		strings.TrimSpace(req.Brand),
		strings.TrimSpace(req.Model),
		req.Year,
		*req.Mileage,
	)
	if req.Description != nil && !blank(*req.Description) {
		evaluation.Description = req.Description
	}

	if err := h.evaluations.Create(r.Context(), evaluation); err != nil {
		h.serverError(w, r, err, "failed to create evaluation")
		return
	}
	writeJSON(w, http.StatusCreated, evaluation)
}

// ListEvaluations returns evaluations, optionally filtered by ?status=
func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	status := models.EvaluationStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		h.jsonError(w, "invalid status", http.StatusBadRequest)
		return
	}

	evaluations, err := h.evaluations.List(r.Context(), status)
	if err != nil {
		h.serverError(w, r, err, "failed to list evaluations")
		return
	}
	writeJSON(w, http.StatusOK, evaluations)
}

// GetEvaluation returns one evaluation
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "evaluation")
	if !ok {
		return
	}

	evaluation, err := h.evaluations.GetByID(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err, "failed to load evaluation")
		return
	}
	if evaluation == nil {
		h.notFound(w, "evaluation")
		return
	}
	writeJSON(w, http.StatusOK, evaluation)
}

// UpdateEvaluationStatus moves an evaluation through the workflow
func (h *Handler) UpdateEvaluationStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "evaluation")
	if !ok {
		return
	}

	var req struct {
		Status models.EvaluationStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		h.jsonError(w, "status is required", http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		h.jsonError(w, "invalid status", http.StatusBadRequest)
		return
	}

	err := h.evaluations.UpdateStatus(r.Context(), id, req.Status)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(w, "evaluation")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "failed to update evaluation")
		return
	}

	h.GetEvaluation(w, r)
}

// DeleteEvaluation removes an evaluation
func (h *Handler) DeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "evaluation")
	if !ok {
		return
	}

	err := h.evaluations.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(w, "evaluation")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "failed to delete evaluation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "evaluation deleted"})
}

// PendingEvaluations returns {"count": n}
func (h *Handler) PendingEvaluations(w http.ResponseWriter, r *http.Request) {
	count, err := h.evaluations.PendingCount(r.Context())
	if err != nil {
		h.serverError(w, r, err, "failed to count evaluations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
