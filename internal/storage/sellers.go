package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/findosh/showroom/internal/models"
	"github.com/google/uuid"
)

// SellerRepository provides salesperson storage
type SellerRepository struct {
	db *DB
}

// NewSellerRepository creates a new seller repository
func NewSellerRepository(db *DB) *SellerRepository {
	return &SellerRepository{db: db}
}

const sellerColumns = `id, name, phone, whatsapp, active, sort_order, created_at`

// Create inserts a new seller
func (r *SellerRepository) Create(ctx context.Context, s *models.Seller) error {
	query := `INSERT INTO sellers (` + sellerColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		s.ID, s.Name, s.Phone, s.WhatsApp, s.Active, s.Order, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create seller: %w", err)
	}
	return nil
}

// List returns sellers by display order. activeOnly hides inactive ones.
func (r *SellerRepository) List(ctx context.Context, activeOnly bool) ([]models.Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers`
	var args []any
	if activeOnly {
		query += ` WHERE active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY sort_order ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	defer rows.Close()

	sellers := []models.Seller{}
	for rows.Next() {
		s, err := scanSeller(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seller: %w", err)
		}
		sellers = append(sellers, *s)
	}
	return sellers, rows.Err()
}

// GetByID retrieves a seller by ID
func (r *SellerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers WHERE id = ?`
	s, err := scanSeller(r.db.QueryRowContext(ctx, r.db.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan seller: %w", err)
	}
	return s, nil
}

// Update stores every column of s
func (r *SellerRepository) Update(ctx context.Context, s *models.Seller) error {
	query := `UPDATE sellers SET name = ?, phone = ?, whatsapp = ?, active = ?, sort_order = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		s.Name, s.Phone, s.WhatsApp, s.Active, s.Order, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update seller: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a seller
func (r *SellerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM sellers WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete seller: %w", err)
	}
	return expectAffected(res)
}

func scanSeller(row rowScanner) (*models.Seller, error) {
	var s models.Seller
	if err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.WhatsApp, &s.Active, &s.Order, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
