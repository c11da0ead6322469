package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/findosh/showroom/internal/models"
	"github.com/google/uuid"
)

// EvaluationRepository provides trade-in evaluation storage
type EvaluationRepository struct {
	db *DB
}

// NewEvaluationRepository creates a new evaluation repository
func NewEvaluationRepository(db *DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

const evaluationColumns = `id, name, email, phone, brand, model, year, mileage, description, status, created_at`

// Create inserts a new evaluation request
func (r *EvaluationRepository) Create(ctx context.Context, e *models.Evaluation) error {
	query := `INSERT INTO evaluations (` + evaluationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		e.ID, e.Name, e.Email, e.Phone, e.Brand, e.Model, e.Year, e.Mileage,
		e.Description, string(e.Status), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}
	return nil
}

// List returns evaluations newest first, optionally restricted to one status
func (r *EvaluationRepository) List(ctx context.Context, status models.EvaluationStatus) ([]models.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	evaluations := []models.Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evaluations = append(evaluations, *e)
	}
	return evaluations, rows.Err()
}

// GetByID retrieves an evaluation by ID
func (r *EvaluationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE id = ?`
	e, err := scanEvaluation(r.db.QueryRowContext(ctx, r.db.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan evaluation: %w", err)
	}
	return e, nil
}

// UpdateStatus moves an evaluation to a new status
func (r *EvaluationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.EvaluationStatus) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE evaluations SET status = ? WHERE id = ?"), string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update evaluation: %w", err)
	}
	return expectAffected(res)
}

// Delete removes an evaluation
func (r *EvaluationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM evaluations WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete evaluation: %w", err)
	}
	return expectAffected(res)
}

// PendingCount counts evaluations still pending
func (r *EvaluationRepository) PendingCount(ctx context.Context) (int, error) {
	var n int
	query := "SELECT COUNT(*) FROM evaluations WHERE status = ?"
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), string(models.EvaluationPending)).Scan(&n)
	return n, err
}

func scanEvaluation(row rowScanner) (*models.Evaluation, error) {
	var e models.Evaluation
	var status string

	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Brand, &e.Model,
		&e.Year, &e.Mileage, &e.Description, &status, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Status = models.EvaluationStatus(status)
	return &e, nil
}
