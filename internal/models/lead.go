package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a message sent through the public contact form
type Contact struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Message   string     `json:"message"`
	VehicleID *uuid.UUID `json:"vehicleId"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewContact creates an unread contact
func NewContact(name, email, phone, message string, vehicleID *uuid.UUID) *Contact {
	return &Contact{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Message:   message,
		VehicleID: vehicleID,
		CreatedAt: time.Now().UTC(),
	}
}

// EvaluationStatus tracks a trade-in request through the back-office
type EvaluationStatus string

const (
	EvaluationPending   EvaluationStatus = "pending"
	EvaluationContacted EvaluationStatus = "contacted"
	EvaluationScheduled EvaluationStatus = "scheduled"
	EvaluationCompleted EvaluationStatus = "completed"
	EvaluationCancelled EvaluationStatus = "cancelled"
)

// AllEvaluationStatuses returns the valid statuses in workflow order
func AllEvaluationStatuses() []EvaluationStatus {
	return []EvaluationStatus{
		EvaluationPending,
		EvaluationContacted,
		EvaluationScheduled,
		EvaluationCompleted,
		EvaluationCancelled,
	}
}

// Valid reports whether s is one of the known statuses
func (s EvaluationStatus) Valid() bool {
	for _, known := range AllEvaluationStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Evaluation is a trade-in evaluation request for the customer's own car
type Evaluation struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone"`
	Brand       string           `json:"brand"`
	Model       string           `json:"model"`
	Year        int              `json:"year"`
	Mileage     int              `json:"mileage"`
	Description *string          `json:"description"`
	Status      EvaluationStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// NewEvaluation creates a pending evaluation
func NewEvaluation(name, email, phone, brand, model string, year, mileage int) *Evaluation {
	return &Evaluation{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Brand:     brand,
		Model:     model,
		Year:      year,
		Mileage:   mileage,
		Status:    EvaluationPending,
		CreatedAt: time.Now().UTC(),
	}
}
