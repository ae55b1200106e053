package service

import (
	"context"
	"fmt"

	"github.com/citypulse/events-api/internal/domain"
	"github.com/citypulse/events-api/internal/repository"
)

var ErrLocationNotFound = repository.ErrLocationNotFound

type LocationRepository interface {
	Create(ctx context.Context, location domain.Location) (domain.Location, error)
	FindByID(ctx context.Context, id uint) (domain.Location, error)
	FindAll(ctx context.Context) ([]domain.Location, error)
	Update(ctx context.Context, location domain.Location) (domain.Location, error)
	Delete(ctx context.Context, id uint) error
}

type LocationService struct {
	repo LocationRepository
}

func NewLocationService(repo LocationRepository) *LocationService {
	return &LocationService{
		repo: repo,
	}
}

func (s *LocationService) CreateLocation(ctx context.Context, location domain.Location) (domain.Location, error) {
	created, err := s.repo.Create(ctx, location)
	if err != nil {
		return domain.Location{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *LocationService) GetLocation(ctx context.Context, id uint) (domain.Location, error) {
	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Location{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return location, nil
}

func (s *LocationService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	locations, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return locations, nil
}

func (s *LocationService) UpdateLocation(ctx context.Context, location domain.Location) (domain.Location, error) {
	updated, err := s.repo.Update(ctx, location)
	if err != nil {
		return domain.Location{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// DeleteLocation removes the location and, via the schema cascade, every
// event held there.
func (s *LocationService) DeleteLocation(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
