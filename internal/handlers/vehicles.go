package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/findosh/showroom/internal/media"
	"github.com/findosh/showroom/internal/middleware"
	"github.com/findosh/showroom/internal/models"
	"github.com/findosh/showroom/internal/services/catalog"
	"github.com/findosh/showroom/internal/services/importer"
	"github.com/findosh/showroom/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// vehicleRequest is the body of create and update. Every key is optional on
// update; create checks the required ones.
type vehicleRequest struct {
	Brand        field[string]           `json:"brand"`
	Model        field[string]           `json:"model"`
	Version      field[string]           `json:"version"`
	Year         field[int]              `json:"year"`
	YearModel    field[int]              `json:"yearModel"`
	Price        field[decimal.Decimal]  `json:"price"`
	Mileage      field[int]              `json:"mileage"`
	Fuel         field[string]           `json:"fuel"`
	Transmission field[string]           `json:"transmission"`
	BodyType     field[string]           `json:"bodyType"`
	Color        field[string]           `json:"color"`
	Doors        field[int]              `json:"doors"`
	Plate        field[string]           `json:"plate"`
	Description  field[string]           `json:"description"`
	Condition    field[models.Condition] `json:"condition"`
	Featured     field[bool]             `json:"featured"`
	Sold         field[bool]             `json:"sold"`
	Optionals    field[[]string]         `json:"optionals"`
}

func (req *vehicleRequest) validateCreate() string {
	switch {
	case !req.Brand.has() || blank(*req.Brand.Value),
		!req.Model.has() || blank(*req.Model.Value),
		!req.Year.has() || *req.Year.Value == 0,
		!req.Price.has() || req.Price.Value.IsZero(),
		!req.Mileage.has(),
		!req.Fuel.has() || blank(*req.Fuel.Value),
		!req.Transmission.has() || blank(*req.Transmission.Value):
		return "brand, model, year, price, mileage, fuel and transmission are required"
	}
	return req.validate()
}

// validate rejects values that are wrong whether creating or updating
func (req *vehicleRequest) validate() string {
	for _, f := range []field[string]{req.Brand, req.Model, req.Fuel, req.Transmission} {
		if f.Set && (f.Value == nil || blank(*f.Value)) {
			return "brand, model, fuel and transmission cannot be empty"
		}
	}
	if req.Price.has() && req.Price.Value.IsNegative() {
		return "price cannot be negative"
	}
	if req.Mileage.has() && *req.Mileage.Value < 0 {
		return "mileage cannot be negative"
	}
	if req.Condition.has() && !req.Condition.Value.Valid() {
		return "condition must be new or used"
	}
	return ""
}

// apply copies the sent fields onto v
func (req *vehicleRequest) apply(v *models.Vehicle) {
	req.Brand.applyTo(&v.Brand)
	req.Model.applyTo(&v.Model)
	req.Version.applyNullable(&v.Version)
	req.Year.applyTo(&v.Year)
	req.YearModel.applyNullable(&v.YearModel)
	req.Price.applyTo(&v.Price)
	req.Mileage.applyTo(&v.Mileage)
	req.Fuel.applyTo(&v.Fuel)
	req.Transmission.applyTo(&v.Transmission)
	req.BodyType.applyNullable(&v.BodyType)
	req.Color.applyNullable(&v.Color)
	req.Doors.applyNullable(&v.Doors)
	req.Plate.applyNullable(&v.Plate)
	req.Description.applyNullable(&v.Description)
	req.Condition.applyTo(&v.Condition)
	req.Featured.applyTo(&v.Featured)
	req.Sold.applyTo(&v.Sold)
	if req.Optionals.Set {
		var names []string
		if req.Optionals.Value != nil {
			names = *req.Optionals.Value
		}
		v.SetOptionals(names)
	}
}

// ListVehicles searches the catalog. Authenticated callers also see sold
// vehicles.
func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	visibility := catalog.Public
	if middleware.GetUser(r) != nil {
		visibility = catalog.Admin
	}

	vehicles, err := h.catalog.Search(r.Context(), catalog.ParseFilter(r.URL.Query()), visibility)
	if err != nil {
		h.serverError(w, r, err, "failed to search vehicles")
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// GetVehicle returns one vehicle, sold or not
func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, ok := h.loadVehicle(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// CreateVehicle adds a vehicle to the inventory
func (h *Handler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validateCreate(); msg != "" {
		h.jsonError(w, msg, http.StatusBadRequest)
		return
	}

	vehicle := models.NewVehicle(*req.Brand.Value, *req.Model.Value, *req.Year.Value, *req.Price.Value)
	req.apply(vehicle)
	if vehicle.YearModel == nil {
		year := vehicle.Year
		vehicle.YearModel = &year
	}

	if err := h.vehicles.Create(r.Context(), vehicle); err != nil {
		h.serverError(w, r, err, "failed to create vehicle")
		return
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

// UpdateVehicle applies a partial update. Optionals are replaced only when
// the key is sent.
func (h *Handler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, ok := h.loadVehicle(w, r)
	if !ok {
		return
	}

	var req vehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		h.jsonError(w, msg, http.StatusBadRequest)
		return
	}

	req.apply(vehicle)
	err := h.vehicles.Update(r.Context(), vehicle, req.Optionals.Set)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(w, "vehicle")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "failed to update vehicle")
		return
	}

	updated, err := h.vehicles.GetByID(r.Context(), vehicle.ID)
	if err != nil || updated == nil {
		h.serverError(w, r, err, "failed to reload vehicle")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteVehicle removes a vehicle and its image files
func (h *Handler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, ok := h.loadVehicle(w, r)
	if !ok {
		return
	}

	err := h.vehicles.Delete(r.Context(), vehicle.ID)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(w, "vehicle")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "failed to delete vehicle")
		return
	}

	for _, img := range vehicle.Images {
		h.removeMedia(r, img.URL)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "vehicle deleted"})
}

// UploadVehicleImages stores the multipart "images" files and appends them
// after the vehicle's existing images
func (h *Handler) UploadVehicleImages(w http.ResponseWriter, r *http.Request) {
	vehicle, ok := h.loadVehicle(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Media.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.Media.MaxUploadBytes); err != nil {
		h.jsonError(w, "invalid or too large upload", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		h.jsonError(w, "no images uploaded", http.StatusBadRequest)
		return
	}

	order, err := h.vehicles.NextImageOrder(r.Context(), vehicle.ID)
	if err != nil {
		h.serverError(w, r, err, "failed to read image order")
		return
	}

	images := make([]models.VehicleImage, 0, len(files))
	for _, fh := range files {
		url, err := h.saveUpload(r, fh, "vehicles")
		if errors.Is(err, media.ErrUnsupportedType) {
			h.jsonError(w, fh.Filename+": only jpeg, png, webp and gif images are accepted", http.StatusBadRequest)
			return
		}
		if err != nil {
			h.serverError(w, r, err, "failed to store image")
			return
		}

		img := models.VehicleImage{ID: uuid.New(), URL: url, Order: order, VehicleID: vehicle.ID}
		if err := h.vehicles.AddImage(r.Context(), img); err != nil {
			h.removeMedia(r, url)
			h.serverError(w, r, err, "failed to save image")
			return
		}
		images = append(images, img)
		order++
	}

	writeJSON(w, http.StatusCreated, map[string]any{"images": images})
}

// DeleteVehicleImage removes one image row and its file
func (h *Handler) DeleteVehicleImage(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := h.pathID(w, r, "id", "image")
	if !ok {
		return
	}
	imageID, ok := h.pathID(w, r, "imageId", "image")
	if !ok {
		return
	}

	img, err := h.vehicles.DeleteImage(r.Context(), vehicleID, imageID)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(w, "image")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "failed to delete image")
		return
	}

	h.removeMedia(r, img.URL)
	writeJSON(w, http.StatusOK, map[string]string{"message": "image deleted"})
}

// Brands lists the brands of vehicles on sale
func (h *Handler) Brands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.Brands(r.Context())
	if err != nil {
		h.serverError(w, r, err, "failed to list brands")
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

// VehicleStats returns inventory counts
func (h *Handler) VehicleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.vehicles.Stats(r.Context())
	if err != nil {
		h.serverError(w, r, err, "failed to load vehicle stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ImportVehicles loads vehicles from an uploaded CSV file. The file comes in
// the multipart "file" field or as the raw request body.
func (h *Handler) ImportVehicles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Media.MaxUploadBytes)

	var reader io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			h.jsonError(w, "no file uploaded", http.StatusBadRequest)
			return
		}
		defer file.Close()
		reader = file
	}

	result, err := h.importer.Import(r.Context(), reader)
	switch {
	case errors.Is(err, importer.ErrEmptyFile),
		errors.Is(err, importer.ErrUnknownFormat),
		errors.Is(err, importer.ErrNoData):
		body := map[string]any{"error": err.Error()}
		if result != nil {
			body["errors"] = result.Errors
		}
		writeJSON(w, http.StatusBadRequest, body)
	case err != nil:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.jsonError(w, "file too large", http.StatusBadRequest)
			return
		}
		h.serverError(w, r, err, "failed to import vehicles")
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

// ImportTemplate downloads a CSV with the expected header and a sample row
func (h *Handler) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="vehicles-template.csv"`)

	writer := csv.NewWriter(w)
	writer.Comma = ';'
	writer.Write(importer.TemplateHeader)
	writer.Write(importer.TemplateExample)
	writer.Flush()
}

// loadVehicle resolves the {id} parameter, writing 404 when it names nothing
func (h *Handler) loadVehicle(w http.ResponseWriter, r *http.Request) (*models.Vehicle, bool) {
	id, ok := h.pathID(w, r, "id", "vehicle")
	if !ok {
		return nil, false
	}

	vehicle, err := h.vehicles.GetByID(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err, "failed to load vehicle")
		return nil, false
	}
	if vehicle == nil {
		h.notFound(w, "vehicle")
		return nil, false
	}
	return vehicle, true
}

// saveUpload sniffs the uploaded file's type and hands it to the media store
func (h *Handler) saveUpload(r *http.Request, fh *multipart.FileHeader, dir string) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	contentType, content, err := media.Sniff(file)
	if err != nil {
		return "", err
	}
	return h.media.Save(r.Context(), dir, contentType, content, fh.Size)
}
