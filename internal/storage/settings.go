package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/findosh/showroom/internal/models"
)

// SettingsRepository stores the single dealership settings row
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

const settingsColumns = `id, company_name, description, email, phone, whatsapp, address,
	working_hours, facebook, instagram, logo_url, banner_url`

// Get returns the settings row, creating an empty one on first access
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	s, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO settings (id) VALUES (?)`), models.SettingsID)
	if err != nil {
		return nil, fmt.Errorf("failed to create settings: %w", err)
	}
	return r.load(ctx)
}

// Update overwrites the settings row
func (r *SettingsRepository) Update(ctx context.Context, s *models.Settings) error {
	if _, err := r.Get(ctx); err != nil {
		return err
	}

	s.ID = models.SettingsID
	query := `
		UPDATE settings SET company_name = ?, description = ?, email = ?, phone = ?,
			whatsapp = ?, address = ?, working_hours = ?, facebook = ?, instagram = ?,
			logo_url = ?, banner_url = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		s.CompanyName, s.Description, s.Email, s.Phone, s.WhatsApp, s.Address,
		s.WorkingHours, s.Facebook, s.Instagram, s.LogoURL, s.BannerURL, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) load(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	query := `SELECT ` + settingsColumns + ` FROM settings WHERE id = ?`
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), models.SettingsID).Scan(
		&s.ID, &s.CompanyName, &s.Description, &s.Email, &s.Phone, &s.WhatsApp,
		&s.Address, &s.WorkingHours, &s.Facebook, &s.Instagram, &s.LogoURL, &s.BannerURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan settings: %w", err)
	}
	return &s, nil
}
