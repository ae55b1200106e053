package repository

import (
	"context"
	"fmt"

	"github.com/citypulse/events-api/internal/domain"
	"github.com/citypulse/events-api/internal/repository/dao"
)

var ErrLocationNotFound = dao.ErrLocationNotFound

type LocationDAO interface {
	Insert(ctx context.Context, location dao.Location) (dao.Location, error)
	FindByID(ctx context.Context, id uint) (dao.Location, error)
	FindAll(ctx context.Context) ([]dao.Location, error)
	Update(ctx context.Context, location dao.Location) (dao.Location, error)
	Delete(ctx context.Context, id uint) error
}

type LocationRepository struct {
	dao LocationDAO
}

func NewLocationRepository(dao LocationDAO) *LocationRepository {
	return &LocationRepository{
		dao: dao,
	}
}

func (r *LocationRepository) Create(ctx context.Context, location domain.Location) (domain.Location, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(location))
	if err != nil {
		return domain.Location{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *LocationRepository) FindByID(ctx context.Context, id uint) (domain.Location, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Location{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *LocationRepository) FindAll(ctx context.Context) ([]domain.Location, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	locations := make([]domain.Location, 0, len(found))
	for _, l := range found {
		locations = append(locations, r.daoToDomain(l))
	}

	return locations, nil
}

func (r *LocationRepository) Update(ctx context.Context, location domain.Location) (domain.Location, error) {
	updated, err := r.dao.Update(ctx, r.domainToDAO(location))
	if err != nil {
		return domain.Location{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *LocationRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *LocationRepository) daoToDomain(l dao.Location) domain.Location {
	return domain.Location{
		ID:   l.ID,
		Name: l.Name,
		Lat:  l.Lat,
		Lon:  l.Lon,
	}
}

func (r *LocationRepository) domainToDAO(l domain.Location) dao.Location {
	return dao.Location{
		ID:   l.ID,
		Name: l.Name,
		Lat:  l.Lat,
		Lon:  l.Lon,
	}
}
