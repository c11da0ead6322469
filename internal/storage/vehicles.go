package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/findosh/showroom/internal/models"
	"github.com/findosh/showroom/internal/textfold"
	"github.com/google/uuid"
)

// VehicleColumns is the select list understood by scanVehicle
const VehicleColumns = `id, brand, model, version, year, year_model, price, mileage,
	fuel, transmission, body_type, color, doors, plate, description, condition,
	featured, sold, created_at, updated_at`

// VehicleRepository provides vehicle data access
type VehicleRepository struct {
	db *DB
}

// NewVehicleRepository creates a new vehicle repository
func NewVehicleRepository(db *DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Create inserts a vehicle together with its optionals and images
func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return r.insert(ctx, tx, v)
	})
}

// CreateBatch inserts multiple vehicles in a transaction
func (r *VehicleRepository) CreateBatch(ctx context.Context, vehicles []*models.Vehicle) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, v := range vehicles {
			if err := r.insert(ctx, tx, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *VehicleRepository) insert(ctx context.Context, tx DBTX, v *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (` + VehicleColumns + `, search_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, r.db.Rebind(query),
		v.ID,
		v.Brand,
		v.Model,
		v.Version,
		v.Year,
		v.YearModel,
		v.Price,
		v.Mileage,
		v.Fuel,
		v.Transmission,
		v.BodyType,
		v.Color,
		v.Doors,
		v.Plate,
		v.Description,
		string(v.Condition),
		v.Featured,
		v.Sold,
		v.CreatedAt,
		v.UpdatedAt,
		SearchKey(v),
	)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}

	if err := r.insertOptionals(ctx, tx, v.Optionals); err != nil {
		return err
	}

	for _, img := range v.Images {
		if err := r.insertImage(ctx, tx, img); err != nil {
			return err
		}
	}
	return nil
}

// SearchKey is the folded brand, model and version stored in search_key
// and matched by the catalog text search
func SearchKey(v *models.Vehicle) string {
	version := ""
	if v.Version != nil {
		version = *v.Version
	}
	return textfold.Join(v.Brand, v.Model, version)
}

// GetByID retrieves a vehicle with its images and optionals. Sold vehicles
// are returned too.
func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	query := `SELECT ` + VehicleColumns + ` FROM vehicles WHERE id = ?`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, r.db.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan vehicle: %w", err)
	}

	vehicles := []models.Vehicle{*v}
	if err := r.AttachMedia(ctx, vehicles); err != nil {
		return nil, err
	}
	return &vehicles[0], nil
}

// QueryVehicles runs a select over VehicleColumns. Placeholders are '?'.
func (r *VehicleRepository) QueryVehicles(ctx context.Context, query string, args ...any) ([]models.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

// Update stores every column of v. When replaceOptionals is set the
// optional list is rewritten from v.Optionals.
func (r *VehicleRepository) Update(ctx context.Context, v *models.Vehicle, replaceOptionals bool) error {
	v.UpdatedAt = time.Now().UTC()
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE vehicles SET
				brand = ?, model = ?, version = ?, year = ?, year_model = ?,
				price = ?, mileage = ?, fuel = ?, transmission = ?, body_type = ?,
				color = ?, doors = ?, plate = ?, description = ?, condition = ?,
				featured = ?, sold = ?, search_key = ?, updated_at = ?
			WHERE id = ?
		`
		res, err := tx.ExecContext(ctx, r.db.Rebind(query),
			v.Brand,
			v.Model,
			v.Version,
			v.Year,
			v.YearModel,
			v.Price,
			v.Mileage,
			v.Fuel,
			v.Transmission,
			v.BodyType,
			v.Color,
			v.Doors,
			v.Plate,
			v.Description,
			string(v.Condition),
			v.Featured,
			v.Sold,
			SearchKey(v),
			v.UpdatedAt,
			v.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update vehicle: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}

		if !replaceOptionals {
			return nil
		}
		if _, err := tx.ExecContext(ctx, r.db.Rebind("DELETE FROM vehicle_optionals WHERE vehicle_id = ?"), v.ID); err != nil {
			return fmt.Errorf("failed to clear optionals: %w", err)
		}
		return r.insertOptionals(ctx, tx, v.Optionals)
	})
}

// Delete removes a vehicle; images and optionals cascade
func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM vehicles WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	return expectAffected(res)
}

// AddImage appends an image to a vehicle
func (r *VehicleRepository) AddImage(ctx context.Context, img models.VehicleImage) error {
	return r.insertImage(ctx, r.db, img)
}

// NextImageOrder returns the order value for the next appended image
func (r *VehicleRepository) NextImageOrder(ctx context.Context, vehicleID uuid.UUID) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM vehicle_images WHERE vehicle_id = ?`
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), vehicleID).Scan(&next)
	return next, err
}

// DeleteImage removes one image of a vehicle and returns it
func (r *VehicleRepository) DeleteImage(ctx context.Context, vehicleID, imageID uuid.UUID) (*models.VehicleImage, error) {
	var img models.VehicleImage
	query := `SELECT id, vehicle_id, url, sort_order FROM vehicle_images WHERE id = ? AND vehicle_id = ?`
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), imageID, vehicleID).
		Scan(&img.ID, &img.VehicleID, &img.URL, &img.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM vehicle_images WHERE id = ?"), imageID); err != nil {
		return nil, fmt.Errorf("failed to delete image: %w", err)
	}
	return &img, nil
}

// AttachMedia fills Images (by order) and Optionals for every vehicle in
// two batched queries
func (r *VehicleRepository) AttachMedia(ctx context.Context, vehicles []models.Vehicle) error {
	if len(vehicles) == 0 {
		return nil
	}

	ids := make([]any, len(vehicles))
	index := make(map[uuid.UUID]int, len(vehicles))
	for i := range vehicles {
		ids[i] = vehicles[i].ID
		index[vehicles[i].ID] = i
		vehicles[i].Images = []models.VehicleImage{}
		vehicles[i].Optionals = []models.VehicleOptional{}
	}
	in := placeholders(len(ids))

	imgQuery := `SELECT id, vehicle_id, url, sort_order FROM vehicle_images
		WHERE vehicle_id IN (` + in + `) ORDER BY sort_order ASC, id ASC`
	if err := r.eachRow(ctx, imgQuery, ids, func(rows *sql.Rows) error {
		var img models.VehicleImage
		if err := rows.Scan(&img.ID, &img.VehicleID, &img.URL, &img.Order); err != nil {
			return err
		}
		v := &vehicles[index[img.VehicleID]]
		v.Images = append(v.Images, img)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to load images: %w", err)
	}

	optQuery := `SELECT id, vehicle_id, name FROM vehicle_optionals
		WHERE vehicle_id IN (` + in + `) ORDER BY name ASC`
	if err := r.eachRow(ctx, optQuery, ids, func(rows *sql.Rows) error {
		var opt models.VehicleOptional
		if err := rows.Scan(&opt.ID, &opt.VehicleID, &opt.Name); err != nil {
			return err
		}
		v := &vehicles[index[opt.VehicleID]]
		v.Optionals = append(v.Optionals, opt)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to load optionals: %w", err)
	}

	return nil
}

// Brands returns the distinct brands of unsold vehicles
func (r *VehicleRepository) Brands(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT brand FROM vehicles WHERE sold = ? ORDER BY brand`
	brands := []string{}
	err := r.eachRow(ctx, query, []any{false}, func(rows *sql.Rows) error {
		var brand string
		if err := rows.Scan(&brand); err != nil {
			return err
		}
		brands = append(brands, brand)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load brands: %w", err)
	}
	return brands, nil
}

// Stats counts inventory by state
func (r *VehicleRepository) Stats(ctx context.Context) (models.VehicleStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN sold = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sold = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN featured = ? AND sold = ? THEN 1 ELSE 0 END), 0)
		FROM vehicles
	`
	var s models.VehicleStats
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), false, true, true, false).
		Scan(&s.Total, &s.Available, &s.Sold, &s.Featured)
	if err != nil {
		return s, fmt.Errorf("failed to load vehicle stats: %w", err)
	}
	return s, nil
}

func (r *VehicleRepository) insertOptionals(ctx context.Context, tx DBTX, optionals []models.VehicleOptional) error {
	query := r.db.Rebind(`INSERT INTO vehicle_optionals (id, vehicle_id, name) VALUES (?, ?, ?)`)
	for _, o := range optionals {
		if _, err := tx.ExecContext(ctx, query, o.ID, o.VehicleID, o.Name); err != nil {
			return fmt.Errorf("failed to insert optional: %w", err)
		}
	}
	return nil
}

func (r *VehicleRepository) insertImage(ctx context.Context, tx DBTX, img models.VehicleImage) error {
	query := `INSERT INTO vehicle_images (id, vehicle_id, url, sort_order) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, r.db.Rebind(query), img.ID, img.VehicleID, img.URL, img.Order); err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}
	return nil
}

func (r *VehicleRepository) eachRow(ctx context.Context, query string, args []any, fn func(*sql.Rows) error) error {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*models.Vehicle, error) {
	var v models.Vehicle
	var condition string

	err := row.Scan(
		&v.ID, &v.Brand, &v.Model, &v.Version, &v.Year, &v.YearModel,
		&v.Price, &v.Mileage, &v.Fuel, &v.Transmission, &v.BodyType,
		&v.Color, &v.Doors, &v.Plate, &v.Description, &condition,
		&v.Featured, &v.Sold, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.Condition = models.Condition(condition)
	v.Images = []models.VehicleImage{}
	v.Optionals = []models.VehicleOptional{}
	return &v, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
