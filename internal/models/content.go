package models

import (
	"time"

	"github.com/google/uuid"
)

// Banner is a slide of the home page carousel
type Banner struct {
	ID        uuid.UUID `json:"id"`
	Title     *string   `json:"title"`
	Subtitle  *string   `json:"subtitle"`
	ImageURL  string    `json:"imageUrl"`
	Link      *string   `json:"link"`
	Active    bool      `json:"active"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBanner creates an active banner at position 0
func NewBanner(imageURL string) *Banner {
	now := time.Now().UTC()
	return &Banner{
		ID:        uuid.New(),
		ImageURL:  imageURL,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Seller is a salesperson listed on the site with a WhatsApp link
type Seller struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	WhatsApp  string    `json:"whatsapp"`
	Active    bool      `json:"active"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewSeller creates an active seller
func NewSeller(name, phone, whatsapp string) *Seller {
	return &Seller{
		ID:        uuid.New(),
		Name:      name,
		Phone:     phone,
		WhatsApp:  whatsapp,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}

// SettingsID is the primary key of the single settings row
const SettingsID = "settings"

// Settings holds the dealership's public details
type Settings struct {
	ID           string  `json:"id"`
	CompanyName  string  `json:"companyName"`
	Description  string  `json:"description"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	WhatsApp     string  `json:"whatsapp"`
	Address      string  `json:"address"`
	WorkingHours string  `json:"workingHours"`
	Facebook     string  `json:"facebook"`
	Instagram    string  `json:"instagram"`
	LogoURL      *string `json:"logoUrl"`
	BannerURL    *string `json:"bannerUrl"`
}

// ContactStats counts leads waiting for a reply
type ContactStats struct {
	Unread int `json:"unread"`
}

// EvaluationStats counts trade-in requests not yet handled
type EvaluationStats struct {
	Pending int `json:"pending"`
}

// DashboardStats is the back-office overview
type DashboardStats struct {
	Vehicles    VehicleStats    `json:"vehicles"`
	Contacts    ContactStats    `json:"contacts"`
	Evaluations EvaluationStats `json:"evaluations"`
}
