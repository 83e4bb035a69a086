package repositories

import (
	"context"

	"surveyhub/internal/database"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
	"surveyhub/internal/services"

	"gorm.io/gorm"
)

type GeoLocationRepository interface {
	GetByID(ctx context.Context, id string) (*GeoLocation, error)
	Create(ctx context.Context, location *GeoLocation) error
	Update(ctx context.Context, location *GeoLocation) error
	UpdateCoordinates(ctx context.Context, id string, latitude, longitude float64) error
	Delete(ctx context.Context, id string) error
}

type geoLocationRepository struct {
	db  database.DB
	log logger.Logger
}

func NewGeoLocation(db database.DB) GeoLocationRepository {
	return &geoLocationRepository{
		db:  db,
		log: logger.New("geoLocationRepository"),
	}
}

func (r *geoLocationRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *geoLocationRepository) GetByID(ctx context.Context, id string) (*GeoLocation, error) {
	var location GeoLocation
	if err := r.getDB(ctx).First(&location, "id = ?", id).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &location, nil
}

func (r *geoLocationRepository) Create(ctx context.Context, location *GeoLocation) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(location).Error; err != nil {
		return log.Err("failed to create geo location", err)
	}
	return nil
}

func (r *geoLocationRepository) Update(ctx context.Context, location *GeoLocation) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(location).Error; err != nil {
		return log.Err("failed to update geo location", err, "id", location.ID)
	}
	return nil
}

func (r *geoLocationRepository) UpdateCoordinates(ctx context.Context, id string, latitude, longitude float64) error {
	log := r.log.Function("UpdateCoordinates")

	err := r.getDB(ctx).Model(&GeoLocation{}).
		Where("id = ?", id).
		Updates(map[string]any{"latitude": latitude, "longitude": longitude}).Error
	if err != nil {
		return log.Err("failed to update coordinates", err, "id", id)
	}
	return nil
}

func (r *geoLocationRepository) Delete(ctx context.Context, id string) error {
	log := r.log.Function("Delete")

	if err := r.getDB(ctx).Delete(&GeoLocation{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete geo location", err, "id", id)
	}
	return nil
}
