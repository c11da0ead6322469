package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Condition of a vehicle on the lot
type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

// Valid reports whether c is a known condition
func (c Condition) Valid() bool {
	return c == ConditionNew || c == ConditionUsed
}

// Vehicle is a single inventory unit
type Vehicle struct {
	ID           uuid.UUID       `json:"id"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	Version      *string         `json:"version"`
	Year         int             `json:"year"`
	YearModel    *int            `json:"yearModel"`
	Price        decimal.Decimal `json:"price"`
	Mileage      int             `json:"mileage"`
	Fuel         string          `json:"fuel"`
	Transmission string          `json:"transmission"`
	BodyType     *string         `json:"bodyType"`
	Color        *string         `json:"color"`
	Doors        *int            `json:"doors"`
	Plate        *string         `json:"plate"`
	Description  *string         `json:"description"`
	Condition    Condition       `json:"condition"`
	Featured     bool            `json:"featured"`
	Sold         bool            `json:"sold"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`

	Images    []VehicleImage    `json:"images"`
	Optionals []VehicleOptional `json:"optionals"`
}

// VehicleImage is a photo attached to a vehicle; Order drives gallery order
type VehicleImage struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Order     int       `json:"order"`
	VehicleID uuid.UUID `json:"vehicleId"`
}

// VehicleOptional is a named piece of optional equipment
type VehicleOptional struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	VehicleID uuid.UUID `json:"vehicleId"`
}

// NewVehicle creates a used, unsold vehicle with generated ID and timestamps
func NewVehicle(brand, model string, year int, price decimal.Decimal) *Vehicle {
	now := time.Now().UTC()
	return &Vehicle{
		ID:        uuid.New(),
		Brand:     brand,
		Model:     model,
		Year:      year,
		Price:     price,
		Condition: ConditionUsed,
		CreatedAt: now,
		UpdatedAt: now,
		Images:    []VehicleImage{},
		Optionals: []VehicleOptional{},
	}
}

// Title returns "Brand Model Version" for listings and emails
func (v *Vehicle) Title() string {
	parts := []string{v.Brand, v.Model}
	if v.Version != nil && *v.Version != "" {
		parts = append(parts, *v.Version)
	}
	return strings.Join(parts, " ")
}

// SetOptionals replaces the optional list, dropping blanks and duplicates
func (v *Vehicle) SetOptionals(names []string) {
	seen := make(map[string]bool, len(names))
	v.Optionals = make([]VehicleOptional, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		v.Optionals = append(v.Optionals, VehicleOptional{
			ID:        uuid.New(),
			Name:      name,
			VehicleID: v.ID,
		})
	}
}

// OptionalNames returns the names of the optional equipment in order
func (v *Vehicle) OptionalNames() []string {
	names := make([]string, len(v.Optionals))
	for i, o := range v.Optionals {
		names[i] = o.Name
	}
	return names
}

// VehicleStats summarises inventory for the back-office dashboard
type VehicleStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Sold      int `json:"sold"`
	Featured  int `json:"featured"`
}
