package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrLocationNotFound = errors.New("location not found")

type Location struct {
	ID   uint    `gorm:"primaryKey"`
	Name string  `gorm:"not null"`
	Lat  float64 `gorm:"not null"`
	Lon  float64 `gorm:"not null"`

	// Deleting a location takes all of its events with it.
	Events []Event `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
}

type LocationDAO struct {
	db *gorm.DB
}

func NewLocationDAO(db *gorm.DB) *LocationDAO {
	return &LocationDAO{
		db: db,
	}
}

func (d *LocationDAO) Insert(ctx context.Context, location Location) (Location, error) {
	result := d.db.WithContext(ctx).Create(&location)
	if result.Error != nil {
		return Location{}, result.Error
	}

	return location, nil
}

func (d *LocationDAO) FindByID(ctx context.Context, id uint) (Location, error) {
	var location Location

	result := d.db.WithContext(ctx).First(&location, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Location{}, ErrLocationNotFound
		}

		return Location{}, result.Error
	}

	return location, nil
}

func (d *LocationDAO) FindAll(ctx context.Context) ([]Location, error) {
	var locations []Location

	result := d.db.WithContext(ctx).Order("id").Find(&locations)
	if result.Error != nil {
		return nil, result.Error
	}

	return locations, nil
}

func (d *LocationDAO) Update(ctx context.Context, location Location) (Location, error) {
	result := d.db.WithContext(ctx).Model(&Location{ID: location.ID}).
		Select("Name", "Lat", "Lon").
		Updates(location)
	if result.Error != nil {
		return Location{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Location{}, ErrLocationNotFound
	}

	return d.FindByID(ctx, location.ID)
}

func (d *LocationDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Select("Events").Delete(&Location{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLocationNotFound
	}

	return nil
}
