package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/findosh/showroom/internal/media"
	"github.com/findosh/showroom/internal/middleware"
	"github.com/findosh/showroom/internal/models"
	"github.com/findosh/showroom/internal/storage"
)

type bannerRequest struct {
	Title    field[string] `json:"title"`
	Subtitle field[string] `json:"subtitle"`
	ImageURL field[string] `json:"imageUrl"`
	Link     field[string] `json:"link"`
	Active   field[bool]   `json:"active"`
	Order    field[int]    `json:"order"`
}

func (req *bannerRequest) apply(b *models.Banner) {
	req.Title.applyNullable(&b.Title)
	req.Subtitle.applyNullable(&b.Subtitle)
	req.ImageURL.applyTo(&b.ImageURL)
	req.Link.applyNullable(&b.Link)
	req.Active.applyTo(&b.Active)
	req.Order.applyTo(&b.Order)
}

// formString sets f from a multipart form value when the key was posted
func formString(r *http.Request, key string, f *field[string]) {
	if values, ok := r.MultipartForm.Value[key]; ok && len(values) > 0 {
		v := values[0]
		*f = field[string]{Set: true, Value: &v}
	}
}

// readBanner decodes a banner from JSON or from a multipart form whose
// "image" file is uploaded to the media store. uploaded is the stored URL,
// if any, so the caller can clean it up on failure.
func (h *Handler) readBanner(w http.ResponseWriter, r *http.Request) (req bannerRequest, uploaded string, ok bool) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := decodeJSON(r, &req); err != nil {
			h.jsonError(w, "invalid request body", http.StatusBadRequest)
			return req, "", false
		}
		return req, "", true
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Media.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.Media.MaxUploadBytes); err != nil {
		h.jsonError(w, "invalid or too large upload", http.StatusBadRequest)
		return req, "", false
	}
	defer r.MultipartForm.RemoveAll()

	formString(r, "title", &req.Title)
	formString(r, "subtitle", &req.Subtitle)
	formString(r, "imageUrl", &req.ImageURL)
	formString(r, "link", &req.Link)
	if v := r.FormValue("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			h.jsonError(w, "active must be true or false", http.StatusBadRequest)
			return req, "", false
		}
		req.Active = field[bool]{Set: true, Value: &active}
	}
	if v := r.FormValue("order"); v != "" {
		order, err := strconv.Atoi(v)
		if err != nil {
			h.jsonError(w, "order must be a number", http.StatusBadRequest)
			return req, "", false
		}
		req.Order = field[int]{Set: true, Value: &order}
	}

	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		url, err := h.saveUpload(r, files[0], "banners")
		if errors.Is(err, media.ErrUnsupportedType) {
			h.jsonError(w, "only jpeg, png, webp and gif images are accepted", http.StatusBadRequest)
			return req, "", false
		}
		if err != nil {
			h.serverError(w, r, err, "failed to store banner image")
			return req, "", false
		}
		req.ImageURL = field[string]{Set: true, Value: &url}
		uploaded = url
	}
	return req, uploaded, true
}

// ListBanners lists banners; anonymous callers only see active ones
func (h *Handler) ListBanners(w http.ResponseWriter, r *http.Request) {
	activeOnly := middleware.GetUser(r) == nil

	banners, err := h.banners.List(r.Context(), activeOnly)
	if err != nil {
		h.serverError(w, r, err, "failed to list banners")
		return
	}
	writeJSON(w, http.StatusOK, banners)
}

// GetBanner returns one banner
func (h *Handler) GetBanner(w http.ResponseWriter, r *http.Request) {
	banner, ok := h.loadBanner(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, banner)
}

// CreateBanner adds a banner from JSON or a multipart image upload
func (h *Handler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	req, uploaded, ok := h.readBanner(w, r)
	if !ok {
		return
	}
	if !req.ImageURL.has() || blank(*req.ImageURL.Value) {
		h.jsonError(w, "image is required", http.StatusBadRequest)
		return
	}

	banner := models.NewBanner(*req.ImageURL.Value)
	req.apply(banner)

	if err := h.banners.Create(r.Context(), banner); err != nil {
		h.removeMedia(r, uploaded)
		h.serverError(w, r, err, "failed to create banner")
		return
	}
	writeJSON(w, http.StatusCreated, banner)
}

// UpdateBanner applies a partial update; a new upload replaces the old file
func (h *Handler) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	banner, ok := h.loadBanner(w, r)
	if !ok {
		return
	}

	req, uploaded, ok := h.readBanner(w, r)
	if !ok {
		return
	}
	if req.ImageURL.Set && (req.ImageURL.Value == nil || blank(*req.ImageURL.Value)) {
		h.jsonError(w, "image cannot be empty", http.StatusBadRequest)
		return
	}

	previous := banner.ImageURL
	req.apply(banner)

	err := h.banners.Update(r.Context(), banner)
	if err != nil {
		h.removeMedia(r, uploaded)
		if errors.Is(err, storage.ErrNotFound) {
			h.notFound(w, "banner")
			return
		}
		h.serverError(w, r, err, "failed to update banner")
		return
	}

	if previous != banner.ImageURL {
		h.removeMedia(r, previous)
	}
	writeJSON(w, http.StatusOK, banner)
}

// DeleteBanner removes a banner and its image file
func (h *Handler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	banner, ok := h.loadBanner(w, r)
	if !ok {
		return
	}

	err := h.banners.Delete(r.Context(), banner.ID)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(w, "banner")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "failed to delete banner")
		return
	}

	h.removeMedia(r, banner.ImageURL)
	writeJSON(w, http.StatusOK, map[string]string{"message": "banner deleted"})
}

func (h *Handler) loadBanner(w http.ResponseWriter, r *http.Request) (*models.Banner, bool) {
	id, ok := h.pathID(w, r, "id", "banner")
	if !ok {
		return nil, false
	}

	banner, err := h.banners.GetByID(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err, "failed to load banner")
		return nil, false
	}
	if banner == nil {
		h.notFound(w, "banner")
		return nil, false
	}
	return banner, true
}

type sellerRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	WhatsApp *string `json:"whatsapp"`
	Active   *bool   `json:"active"`
	Order    *int    `json:"order"`
}

func (req *sellerRequest) apply(s *models.Seller) {
	if req.Name != nil {
		s.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		s.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.WhatsApp != nil {
		s.WhatsApp = strings.TrimSpace(*req.WhatsApp)
	}
	if req.Active != nil {
		s.Active = *req.Active
	}
	if req.Order != nil {
		s.Order = *req.Order
	}
}

// ListSellers lists sellers; anonymous callers only see active ones
func (h *Handler) ListSellers(w http.ResponseWriter, r *http.Request) {
	activeOnly := middleware.GetUser(r) == nil

	sellers, err := h.sellers.List(r.Context(), activeOnly)
	if err != nil {
		h.serverError(w, r, err, "failed to list sellers")
		return
	}
	writeJSON(w, http.StatusOK, sellers)
}

// CreateSeller adds a seller
func (h *Handler) CreateSeller(w http.ResponseWriter, r *http.Request) {
	var req sellerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	seller := models.NewSeller("", "", "")
	req.apply(seller)
	if seller.Name == "" || seller.Phone == "" || seller.WhatsApp == "" {
		h.jsonError(w, "name, phone and whatsapp are required", http.StatusBadRequest)
		return
	}

	if err := h.sellers.Create(r.Context(), seller); err != nil {
		h.serverError(w, r, err, "failed to create seller")
		return
	}
	writeJSON(w, http.StatusCreated, seller)
}

// UpdateSeller applies a partial update
func (h *Handler) UpdateSeller(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "seller")
	if !ok {
		return
	}

	seller, err := h.sellers.GetByID(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err, "failed to load seller")
		return
	}
	if seller == nil {
		h.notFound(w, "seller")
		return
	}

	var req sellerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.apply(seller)
	if seller.Name == "" || seller.Phone == "" || seller.WhatsApp == "" {
		h.jsonError(w, "name, phone and whatsapp cannot be empty", http.StatusBadRequest)
		return
	}

	err = h.sellers.Update(r.Context(), seller)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(w, "seller")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "failed to update seller")
		return
	}
	writeJSON(w, http.StatusOK, seller)
}

// DeleteSeller removes a seller
func (h *Handler) DeleteSeller(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id", "seller")
	if !ok {
		return
	}

	err := h.sellers.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(w, "seller")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "failed to delete seller")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "seller deleted"})
}

type settingsRequest struct {
	CompanyName  *string       `json:"companyName"`
	Description  *string       `json:"description"`
	Email        *string       `json:"email"`
	Phone        *string       `json:"phone"`
	WhatsApp     *string       `json:"whatsapp"`
	Address      *string       `json:"address"`
	WorkingHours *string       `json:"workingHours"`
	Facebook     *string       `json:"facebook"`
	Instagram    *string       `json:"instagram"`
	LogoURL      field[string] `json:"logoUrl"`
	BannerURL    field[string] `json:"bannerUrl"`
}

func (req *settingsRequest) apply(s *models.Settings) {
	for dst, src := range map[*string]*string{
		&s.CompanyName:  req.CompanyName,
		&s.Description:  req.Description,
		&s.Email:        req.Email,
		&s.Phone:        req.Phone,
		&s.WhatsApp:     req.WhatsApp,
		&s.Address:      req.Address,
		&s.WorkingHours: req.WorkingHours,
		&s.Facebook:     req.Facebook,
		&s.Instagram:    req.Instagram,
	} {
		if src != nil {
			*dst = *src
		}
	}
	req.LogoURL.applyNullable(&s.LogoURL)
	req.BannerURL.applyNullable(&s.BannerURL)
}

// GetSettings returns the dealership settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		h.serverError(w, r, err, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings applies a partial update to the settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email != nil && *req.Email != "" && !validEmail(*req.Email) {
		h.jsonError(w, "invalid email", http.StatusBadRequest)
		return
	}

	settings, err := h.settings.Get(r.Context())
	if err != nil {
		h.serverError(w, r, err, "failed to load settings")
		return
	}

	req.apply(settings)
	if err := h.settings.Update(r.Context(), settings); err != nil {
		h.serverError(w, r, err, "failed to update settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// DashboardStats returns the back-office overview counts
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vehicles, err := h.vehicles.Stats(ctx)
	if err != nil {
		h.serverError(w, r, err, "failed to load vehicle stats")
		return
	}
	unread, err := h.contacts.UnreadCount(ctx)
	if err != nil {
		h.serverError(w, r, err, "failed to count contacts")
		return
	}
	pending, err := h.evaluations.PendingCount(ctx)
	if err != nil {
		h.serverError(w, r, err, "failed to count evaluations")
		return
	}

	writeJSON(w, http.StatusOK, models.DashboardStats{
		Vehicles:    vehicles,
		Contacts:    models.ContactStats{Unread: unread},
		Evaluations: models.EvaluationStats{Pending: pending},
	})
}
