package geoLocationController

import (
	"context"
	"errors"
	"testing"

	"surveyhub/internal/database"
	"surveyhub/internal/geo"
	. "surveyhub/internal/models"
	"surveyhub/internal/repositories"
	"surveyhub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubGeocoder struct {
	coords *geo.Coordinates
	err    error
	calls  int
	fields GeoLocationFields
}

func (s *stubGeocoder) Geocode(_ context.Context, fields GeoLocationFields) (*geo.Coordinates, error) {
	s.calls++
	s.fields = fields
	return s.coords, s.err
}

type geoTestEnv struct {
	controller *GeoLocationController
	geoRepo    repositories.GeoLocationRepository
	geocoder   *stubGeocoder
	ctx        context.Context
}

func newGeoTestEnv(t *testing.T) *geoTestEnv {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&GeoLocation{}))

	db := database.DB{SQL: gormDB}
	geoRepo := repositories.NewGeoLocation(db)
	geocoder := &stubGeocoder{}

	return &geoTestEnv{
		controller: New(geoRepo, geocoder, services.NewTransactionService(db)),
		geoRepo:    geoRepo,
		geocoder:   geocoder,
		ctx:        context.Background(),
	}
}

func (e *geoTestEnv) createLocation(t *testing.T, lat, lon float64) *GeoLocation {
	t.Helper()
	location := &GeoLocation{
		AddressLine1: "12 Harbor Road",
		City:         "Cape Town",
		Province:     "Western Cape",
		Country:      "South Africa",
		PostalCode:   "8001",
		Latitude:     lat,
		Longitude:    lon,
		Which:        GeoOwnerUser,
	}
	require.NoError(t, e.geoRepo.Create(e.ctx, location))
	return location
}

func TestUpdateCoordinatesIfZero_GeocodesAndPersists(t *testing.T) {
	env := newGeoTestEnv(t)
	env.geocoder.coords = &geo.Coordinates{Latitude: -33.9249, Longitude: 18.4241}
	location := env.createLocation(t, 0, 0)

	updated, err := env.controller.UpdateCoordinatesIfZero(env.ctx, location.ID)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, 1, env.geocoder.calls)
	assert.Equal(t, "12 Harbor Road", env.geocoder.fields.AddressLine1)
	assert.Equal(t, "Cape Town", env.geocoder.fields.City)

	stored, err := env.geoRepo.GetByID(env.ctx, location.ID)
	require.NoError(t, err)
	assert.Equal(t, -33.9249, stored.Latitude)
	assert.Equal(t, 18.4241, stored.Longitude)
}

func TestUpdateCoordinatesIfZero_SkipsNonZeroCoordinates(t *testing.T) {
	env := newGeoTestEnv(t)
	env.geocoder.coords = &geo.Coordinates{Latitude: 1, Longitude: 1}
	location := env.createLocation(t, -26.2041, 28.0473)

	updated, err := env.controller.UpdateCoordinatesIfZero(env.ctx, location.ID)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, 0, env.geocoder.calls, "geocoder should not be called for records with coordinates")

	stored, err := env.geoRepo.GetByID(env.ctx, location.ID)
	require.NoError(t, err)
	assert.Equal(t, -26.2041, stored.Latitude)
	assert.Equal(t, 28.0473, stored.Longitude)
}

func TestUpdateCoordinatesIfZero_PartialCoordinateCountsAsSet(t *testing.T) {
	env := newGeoTestEnv(t)
	location := env.createLocation(t, 0, 28.0473)

	updated, err := env.controller.UpdateCoordinatesIfZero(env.ctx, location.ID)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, 0, env.geocoder.calls)
}

func TestUpdateCoordinatesIfZero_NoMatchLeavesRecordUnchanged(t *testing.T) {
	env := newGeoTestEnv(t)
	env.geocoder.coords = nil
	location := env.createLocation(t, 0, 0)

	updated, err := env.controller.UpdateCoordinatesIfZero(env.ctx, location.ID)
	require.NoError(t, err)
	assert.False(t, updated)

	stored, err := env.geoRepo.GetByID(env.ctx, location.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Latitude)
	assert.Zero(t, stored.Longitude)
}

func TestUpdateCoordinatesIfZero_GeocoderError(t *testing.T) {
	env := newGeoTestEnv(t)
	env.geocoder.err = errors.New("upstream timeout")
	location := env.createLocation(t, 0, 0)

	updated, err := env.controller.UpdateCoordinatesIfZero(env.ctx, location.ID)
	assert.Error(t, err)
	assert.False(t, updated)
}

func TestUpdateCoordinatesIfZero_NotFound(t *testing.T) {
	env := newGeoTestEnv(t)

	_, err := env.controller.UpdateCoordinatesIfZero(env.ctx, "missing-id")
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestGetLocation(t *testing.T) {
	env := newGeoTestEnv(t)
	location := env.createLocation(t, 0, 0)

	found, err := env.controller.GetLocation(env.ctx, location.ID)
	require.NoError(t, err)
	assert.Equal(t, location.ID, found.ID)

	_, err = env.controller.GetLocation(env.ctx, "missing-id")
	assert.ErrorIs(t, err, ErrLocationNotFound)
}
