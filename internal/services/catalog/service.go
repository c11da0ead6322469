package catalog

import (
	"context"
	"fmt"

	"github.com/findosh/showroom/internal/models"
)

// VehicleStore runs catalog selects and loads their child rows
type VehicleStore interface {
	QueryVehicles(ctx context.Context, query string, args ...any) ([]models.Vehicle, error)
	AttachMedia(ctx context.Context, vehicles []models.Vehicle) error
	Brands(ctx context.Context) ([]string, error)
}

// Service serves the vehicle catalog
type Service struct {
	store VehicleStore
}

// NewService creates a catalog service
func NewService(store VehicleStore) *Service {
	return &Service{store: store}
}

// Search returns the vehicles matching f, each with images and optionals
func (s *Service) Search(ctx context.Context, f Filter, v Visibility) ([]models.Vehicle, error) {
	q := BuildQuery(f, v)

	vehicles, err := s.store.QueryVehicles(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	if err := s.store.AttachMedia(ctx, vehicles); err != nil {
		return nil, fmt.Errorf("catalog enrichment: %w", err)
	}
	return vehicles, nil
}

// Brands returns the sorted distinct brands of vehicles still for sale
func (s *Service) Brands(ctx context.Context) ([]string, error) {
	return s.store.Brands(ctx)
}
