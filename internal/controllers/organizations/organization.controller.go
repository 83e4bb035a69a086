package organizationController

import (
	"context"
	"errors"

	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
	"surveyhub/internal/repositories"
	"surveyhub/internal/services"
)

var (
	ErrMissingName            = errors.New("organization name is required")
	ErrOrganizationExists     = errors.New("an organization with that name already exists")
	ErrOrganizationTypeExists = errors.New("an organization type with that name already exists")
	ErrOrganizationNotFound   = errors.New("organization not found")
)

type OrganizationController struct {
	orgRepo            repositories.OrganizationRepository
	userRepo           repositories.UserRepository
	geoRepo            repositories.GeoLocationRepository
	transactionService *services.TransactionService
	log                logger.Logger
}

func New(
	orgRepo repositories.OrganizationRepository,
	userRepo repositories.UserRepository,
	geoRepo repositories.GeoLocationRepository,
	transactionService *services.TransactionService,
) *OrganizationController {
	return &OrganizationController{
		orgRepo:            orgRepo,
		userRepo:           userRepo,
		geoRepo:            geoRepo,
		transactionService: transactionService,
		log:                logger.New("OrganizationController"),
	}
}

func (oc *OrganizationController) CreateOrganization(ctx context.Context, req *CreateOrganizationRequest) (*Organization, error) {
	if req.Name == "" {
		return nil, ErrMissingName
	}

	if existing, _ := oc.orgRepo.GetByName(ctx, req.Name); existing != nil {
		return nil, ErrOrganizationExists
	}

	org := &Organization{
		Name:               req.Name,
		OrganizationTypeID: req.OrganizationTypeID,
		PrimaryContactID:   req.PrimaryContactID,
		SecondaryContactID: req.SecondaryContactID,
		HeadID:             req.HeadID,
		Details:            req.Details,
	}

	err := oc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if req.GeoLocation != nil {
			location := &GeoLocation{
				AddressLine1: req.GeoLocation.AddressLine1,
				AddressLine2: req.GeoLocation.AddressLine2,
				City:         req.GeoLocation.City,
				Town:         req.GeoLocation.Town,
				Province:     req.GeoLocation.Province,
				Country:      req.GeoLocation.Country,
				PostalCode:   req.GeoLocation.PostalCode,
				Which:        GeoOwnerOrganization,
			}
			if err := oc.geoRepo.Create(txCtx, location); err != nil {
				return err
			}
			org.GeoLocationID = &location.ID
		}

		return oc.orgRepo.Create(txCtx, org)
	})
	if err != nil {
		return nil, err
	}

	return org, nil
}

func (oc *OrganizationController) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	org, err := oc.orgRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	return org, nil
}

func (oc *OrganizationController) GetAllOrganizations(ctx context.Context) ([]*Organization, error) {
	return oc.orgRepo.GetAll(ctx)
}

func (oc *OrganizationController) UpdateOrganization(ctx context.Context, id string, req *UpdateOrganizationRequest) (*Organization, error) {
	org, err := oc.orgRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}

	if req.Name != nil && *req.Name != org.Name {
		if existing, _ := oc.orgRepo.GetByName(ctx, *req.Name); existing != nil {
			return nil, ErrOrganizationExists
		}
		org.Name = *req.Name
	}
	if req.OrganizationTypeID != nil {
		org.OrganizationTypeID = req.OrganizationTypeID
	}
	if req.PrimaryContactID != nil {
		org.PrimaryContactID = req.PrimaryContactID
	}
	if req.SecondaryContactID != nil {
		org.SecondaryContactID = req.SecondaryContactID
	}
	if req.HeadID != nil {
		org.HeadID = req.HeadID
	}
	if req.Details != nil {
		org.Details = req.Details
	}

	if err := oc.orgRepo.Update(ctx, org); err != nil {
		return nil, err
	}

	return org, nil
}

// DeleteOrganization removes the organization and nulls the organization
// reference of every member user. Users are never cascade-deleted.
func (oc *OrganizationController) DeleteOrganization(ctx context.Context, id string) error {
	if _, err := oc.orgRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrganizationNotFound
		}
		return err
	}

	return oc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if err := oc.userRepo.ClearOrganization(txCtx, id); err != nil {
			return err
		}
		return oc.orgRepo.Delete(txCtx, id)
	})
}

func (oc *OrganizationController) CreateType(ctx context.Context, name string) (*OrganizationType, error) {
	if name == "" {
		return nil, ErrMissingName
	}

	if existing, _ := oc.orgRepo.GetTypeByName(ctx, name); existing != nil {
		return nil, ErrOrganizationTypeExists
	}

	orgType := &OrganizationType{Name: name}
	if err := oc.orgRepo.CreateType(ctx, orgType); err != nil {
		return nil, err
	}
	return orgType, nil
}

func (oc *OrganizationController) ListTypes(ctx context.Context) ([]*OrganizationType, error) {
	return oc.orgRepo.ListTypes(ctx)
}
