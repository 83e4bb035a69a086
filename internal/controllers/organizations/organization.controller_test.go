package organizationController

import (
	"context"
	"testing"

	"surveyhub/internal/database"
	. "surveyhub/internal/models"
	"surveyhub/internal/repositories"
	"surveyhub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	controller *OrganizationController
	userRepo   repositories.UserRepository
	orgRepo    repositories.OrganizationRepository
	geoRepo    repositories.GeoLocationRepository
	ctx        context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gormDB.AutoMigrate(
		&OrganizationType{},
		&Organization{},
		&User{},
		&GeoLocation{},
	))

	db := database.DB{SQL: gormDB}
	userRepo := repositories.NewUser(db)
	orgRepo := repositories.NewOrganization(db)
	geoRepo := repositories.NewGeoLocation(db)

	return &testEnv{
		controller: New(orgRepo, userRepo, geoRepo, services.NewTransactionService(db)),
		userRepo:   userRepo,
		orgRepo:    orgRepo,
		geoRepo:    geoRepo,
		ctx:        context.Background(),
	}
}

func (e *testEnv) createMember(t *testing.T, username string, organizationID string) *User {
	t.Helper()
	user := &User{
		Username:       username,
		Email:          username + "@example.com",
		Password:       "password",
		Role:           RoleUser,
		SurveyCode:     "code-" + username,
		OrganizationID: &organizationID,
	}
	require.NoError(t, e.userRepo.Create(e.ctx, user))
	return user
}

func TestCreateOrganization(t *testing.T) {
	env := newTestEnv(t)

	org, err := env.controller.CreateOrganization(env.ctx, &CreateOrganizationRequest{
		Name: "Riverside Clinic",
		GeoLocation: &GeoLocationFields{
			AddressLine1: "42 River Road",
			City:         "Portland",
			Country:      "USA",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, org.GeoLocationID)

	location, err := env.geoRepo.GetByID(env.ctx, *org.GeoLocationID)
	require.NoError(t, err)
	assert.Equal(t, GeoOwnerOrganization, location.Which)

	_, err = env.controller.CreateOrganization(env.ctx, &CreateOrganizationRequest{Name: "Riverside Clinic"})
	assert.ErrorIs(t, err, ErrOrganizationExists)

	_, err = env.controller.CreateOrganization(env.ctx, &CreateOrganizationRequest{})
	assert.ErrorIs(t, err, ErrMissingName)
}

func TestDeleteOrganization_ClearsMemberReferences(t *testing.T) {
	env := newTestEnv(t)

	org, err := env.controller.CreateOrganization(env.ctx, &CreateOrganizationRequest{Name: "Westgate"})
	require.NoError(t, err)

	memberA := env.createMember(t, "membera", org.ID)
	memberB := env.createMember(t, "memberb", org.ID)

	require.NoError(t, env.controller.DeleteOrganization(env.ctx, org.ID))

	_, err = env.controller.GetOrganization(env.ctx, org.ID)
	assert.ErrorIs(t, err, ErrOrganizationNotFound)

	for _, member := range []*User{memberA, memberB} {
		stored, err := env.userRepo.GetByID(env.ctx, member.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.OrganizationID, "member %s must not point at the deleted organization", member.Username)
	}
}

func TestDeleteOrganization_NotFound(t *testing.T) {
	env := newTestEnv(t)

	err := env.controller.DeleteOrganization(env.ctx, "missing-id")
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestCreateType_Duplicate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.controller.CreateType(env.ctx, "clinic")
	require.NoError(t, err)

	_, err = env.controller.CreateType(env.ctx, "clinic")
	assert.ErrorIs(t, err, ErrOrganizationTypeExists)

	_, err = env.controller.CreateType(env.ctx, "")
	assert.ErrorIs(t, err, ErrMissingName)
}
