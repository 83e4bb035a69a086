package geoLocationController

import (
	"context"
	"errors"

	"surveyhub/internal/geo"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
	"surveyhub/internal/repositories"
	"surveyhub/internal/services"
)

var ErrLocationNotFound = errors.New("geo location not found")

// Geocoder is the slice of the geo package this controller needs; tests
// substitute a stub.
type Geocoder interface {
	Geocode(ctx context.Context, fields GeoLocationFields) (*geo.Coordinates, error)
}

type GeoLocationController struct {
	geoRepo            repositories.GeoLocationRepository
	geocoder           Geocoder
	transactionService *services.TransactionService
	log                logger.Logger
}

func New(
	geoRepo repositories.GeoLocationRepository,
	geocoder Geocoder,
	transactionService *services.TransactionService,
) *GeoLocationController {
	return &GeoLocationController{
		geoRepo:            geoRepo,
		geocoder:           geocoder,
		transactionService: transactionService,
		log:                logger.New("GeoLocationController"),
	}
}

func (gc *GeoLocationController) GetLocation(ctx context.Context, id string) (*GeoLocation, error) {
	location, err := gc.geoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return location, nil
}

// UpdateCoordinatesIfZero geocodes the record only when both coordinates are
// exactly zero, so manually corrected data is never clobbered. The external
// call happens outside the persistence transaction. The returned bool
// reports whether the record was updated.
func (gc *GeoLocationController) UpdateCoordinatesIfZero(ctx context.Context, id string) (bool, error) {
	log := gc.log.Function("UpdateCoordinatesIfZero")

	location, err := gc.geoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, ErrLocationNotFound
		}
		return false, err
	}

	if location.Latitude != 0 || location.Longitude != 0 {
		return false, nil
	}

	coords, err := gc.geocoder.Geocode(ctx, GeoLocationFields{
		AddressLine1: location.AddressLine1,
		AddressLine2: location.AddressLine2,
		City:         location.City,
		Town:         location.Town,
		Province:     location.Province,
		Country:      location.Country,
		PostalCode:   location.PostalCode,
	})
	if err != nil {
		return false, log.Err("geocoding failed", err, "geoLocationID", id)
	}
	if coords == nil {
		return false, nil
	}

	err = gc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		return gc.geoRepo.UpdateCoordinates(txCtx, id, coords.Latitude, coords.Longitude)
	})
	if err != nil {
		return false, err
	}

	return true, nil
}
