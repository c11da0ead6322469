package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/findosh/showroom/internal/models"
	"github.com/google/uuid"
)

// BannerRepository provides home carousel storage
type BannerRepository struct {
	db *DB
}

// NewBannerRepository creates a new banner repository
func NewBannerRepository(db *DB) *BannerRepository {
	return &BannerRepository{db: db}
}

const bannerColumns = `id, title, subtitle, image_url, link, active, sort_order, created_at, updated_at`

// Create inserts a new banner
func (r *BannerRepository) Create(ctx context.Context, b *models.Banner) error {
	query := `INSERT INTO banners (` + bannerColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		b.ID, b.Title, b.Subtitle, b.ImageURL, b.Link, b.Active, b.Order, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create banner: %w", err)
	}
	return nil
}

// List returns banners by display order. activeOnly hides inactive ones.
func (r *BannerRepository) List(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	query := `SELECT ` + bannerColumns + ` FROM banners`
	var args []any
	if activeOnly {
		query += ` WHERE active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY sort_order ASC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list banners: %w", err)
	}
	defer rows.Close()

	banners := []models.Banner{}
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan banner: %w", err)
		}
		banners = append(banners, *b)
	}
	return banners, rows.Err()
}

// GetByID retrieves a banner by ID
func (r *BannerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	query := `SELECT ` + bannerColumns + ` FROM banners WHERE id = ?`
	b, err := scanBanner(r.db.QueryRowContext(ctx, r.db.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan banner: %w", err)
	}
	return b, nil
}

// Update stores every column of b
func (r *BannerRepository) Update(ctx context.Context, b *models.Banner) error {
	b.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE banners SET title = ?, subtitle = ?, image_url = ?, link = ?,
			active = ?, sort_order = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		b.Title, b.Subtitle, b.ImageURL, b.Link, b.Active, b.Order, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update banner: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a banner
func (r *BannerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM banners WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete banner: %w", err)
	}
	return expectAffected(res)
}

func scanBanner(row rowScanner) (*models.Banner, error) {
	var b models.Banner
	err := row.Scan(&b.ID, &b.Title, &b.Subtitle, &b.ImageURL, &b.Link,
		&b.Active, &b.Order, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
