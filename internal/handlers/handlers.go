// Package handlers provides HTTP request handlers
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/mail"
	"strings"

	"github.com/findosh/showroom/internal/config"
	"github.com/findosh/showroom/internal/media"
	"github.com/findosh/showroom/internal/middleware"
	"github.com/findosh/showroom/internal/services/auth"
	"github.com/findosh/showroom/internal/services/catalog"
	"github.com/findosh/showroom/internal/services/importer"
	"github.com/findosh/showroom/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// APIVersion is reported by the health endpoint
const APIVersion = "1.0.0"

// Handler contains all HTTP handlers and dependencies
type Handler struct {
	cfg         *config.Config
	authService *auth.Service
	catalog     *catalog.Service
	importer    *importer.Service
	media       media.Store

	users       *storage.UserRepository
	vehicles    *storage.VehicleRepository
	contacts    *storage.ContactRepository
	evaluations *storage.EvaluationRepository
	banners     *storage.BannerRepository
	sellers     *storage.SellerRepository
	settings    *storage.SettingsRepository
}

// New creates a new handler with all dependencies
func New(cfg *config.Config, db *storage.DB, authService *auth.Service, store media.Store) *Handler {
	vehicles := storage.NewVehicleRepository(db)

	return &Handler{
		cfg:         cfg,
		authService: authService,
		catalog:     catalog.NewService(vehicles),
		importer:    importer.NewService(vehicles),
		media:       store,
		users:       storage.NewUserRepository(db),
		vehicles:    vehicles,
		contacts:    storage.NewContactRepository(db),
		evaluations: storage.NewEvaluationRepository(db),
		banners:     storage.NewBannerRepository(db),
		sellers:     storage.NewSellerRepository(db),
		settings:    storage.NewSettingsRepository(db),
	}
}

// Health reports that the API is up
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Showroom API",
		"version": APIVersion,
	})
}

// writeJSON writes v as the JSON response body
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// jsonError writes a JSON error response
func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	middleware.WriteError(w, status, message)
}

// serverError logs err against the request and answers with a generic 500
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg(msg)
	h.jsonError(w, "internal server error", http.StatusInternalServerError)
}

func (h *Handler) notFound(w http.ResponseWriter, what string) {
	h.jsonError(w, what+" not found", http.StatusNotFound)
}

// NotFound answers unknown routes
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.jsonError(w, "not found", http.StatusNotFound)
}

// MethodNotAllowed answers known routes hit with the wrong method
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
}

// decodeJSON reads the request body into v. An empty body decodes as {}.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// pathID parses a uuid URL parameter. Malformed ids cannot name a row, so
// they are reported as not found.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		h.notFound(w, what)
		return uuid.Nil, false
	}
	return id, true
}

// removeMedia deletes a stored file, logging instead of failing the request.
// URLs the store does not own (external links) are left alone.
func (h *Handler) removeMedia(r *http.Request, url string) {
	if url == "" {
		return
	}
	err := h.media.Delete(r.Context(), url)
	if err != nil && !errors.Is(err, media.ErrForeignURL) {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("url", url).Msg("failed to delete media")
	}
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// field records whether a JSON key was sent at all, so an explicit null can
// clear a nullable column while an absent key leaves it untouched
type field[T any] struct {
	Set   bool
	Value *T
}

func (f *field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// has reports whether the key was sent with a non-null value
func (f field[T]) has() bool {
	return f.Set && f.Value != nil
}

// applyTo overwrites *dst when a non-null value was sent
func (f field[T]) applyTo(dst *T) {
	if f.has() {
		*dst = *f.Value
	}
}

// applyNullable overwrites *dst when the key was sent, null included
func (f field[T]) applyNullable(dst **T) {
	if f.Set {
		*dst = f.Value
	}
}
