package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/findosh/showroom/internal/models"
	"github.com/google/uuid"
)

// ContactRepository provides contact-form lead storage
type ContactRepository struct {
	db *DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *DB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = `id, name, email, phone, message, vehicle_id, is_read, created_at`

// Create inserts a new contact
func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	query := `INSERT INTO contacts (` + contactColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	vehicleID := uuid.NullUUID{}
	if c.VehicleID != nil {
		vehicleID = uuid.NullUUID{UUID: *c.VehicleID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		c.ID, c.Name, c.Email, c.Phone, c.Message, vehicleID, c.Read, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// List returns all contacts, newest first
func (r *ContactRepository) List(ctx context.Context) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts ORDER BY created_at DESC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// GetByID retrieves a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`
	c, err := scanContact(r.db.QueryRowContext(ctx, r.db.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}
	return c, nil
}

// MarkRead flags a contact as read
func (r *ContactRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE contacts SET is_read = ? WHERE id = ?"), true, id)
	if err != nil {
		return fmt.Errorf("failed to mark contact read: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a contact
func (r *ContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM contacts WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return expectAffected(res)
}

// UnreadCount counts contacts not yet read
func (r *ContactRepository) UnreadCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.db.Rebind("SELECT COUNT(*) FROM contacts WHERE is_read = ?"), false).Scan(&n)
	return n, err
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	var vehicleID uuid.NullUUID

	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Message, &vehicleID, &c.Read, &c.CreatedAt); err != nil {
		return nil, err
	}
	if vehicleID.Valid {
		id := vehicleID.UUID
		c.VehicleID = &id
	}
	return &c, nil
}
