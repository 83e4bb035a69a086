package seed

import (
	"os"

	"surveyhub/config"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

const defaultFixturePath = "cmd/migration/seed/fixtures.yaml"

type fixtures struct {
	Organizations []struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	} `yaml:"organizations"`
	Users []struct {
		Username     string `yaml:"username"`
		Email        string `yaml:"email"`
		FirstName    string `yaml:"first_name"`
		LastName     string `yaml:"last_name"`
		Password     string `yaml:"password"`
		Role         string `yaml:"role"`
		Organization string `yaml:"organization"`
	} `yaml:"users"`
	Templates []struct {
		Version string `yaml:"version"`
		Name    string `yaml:"name"`
	} `yaml:"templates"`
}

// Seed loads development fixtures from a YAML file. Existing rows are left
// alone, so reseeding is safe.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	path := os.Getenv("SURVEYHUB_SEED_FILE")
	if path == "" {
		path = defaultFixturePath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return log.Err("failed to read seed fixtures", err, "path", path)
	}

	var f fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return log.Err("failed to parse seed fixtures", err, "path", path)
	}

	orgIDs := make(map[string]string)
	for _, org := range f.Organizations {
		var existing Organization
		if err := db.First(&existing, "name = ?", org.Name).Error; err == nil {
			orgIDs[org.Name] = existing.ID
			continue
		}

		var typeID *int
		if org.Type != "" {
			orgType := OrganizationType{Name: org.Type}
			if err := db.FirstOrCreate(&orgType, OrganizationType{Name: org.Type}).Error; err != nil {
				return log.Err("failed to seed organization type", err, "type", org.Type)
			}
			typeID = &orgType.ID
		}

		row := Organization{Name: org.Name, OrganizationTypeID: typeID}
		if err := db.Create(&row).Error; err != nil {
			return log.Err("failed to seed organization", err, "name", org.Name)
		}
		orgIDs[org.Name] = row.ID
	}

	for _, user := range f.Users {
		var existing User
		if err := db.First(&existing, "username = ?", user.Username).Error; err == nil {
			continue
		}

		row := User{
			Username:   user.Username,
			Email:      user.Email,
			FirstName:  user.FirstName,
			LastName:   user.LastName,
			Password:   user.Password,
			Role:       user.Role,
			SurveyCode: uuid.NewString(),
		}
		if id, ok := orgIDs[user.Organization]; ok {
			row.OrganizationID = &id
		}
		log.Info("Seeding user", "username", user.Username)
		if err := db.Create(&row).Error; err != nil {
			return log.Err("failed to seed user", err, "username", user.Username)
		}
	}

	for _, tmpl := range f.Templates {
		version := SurveyTemplateVersion{Name: tmpl.Version}
		if err := db.FirstOrCreate(&version, SurveyTemplateVersion{Name: tmpl.Version}).Error; err != nil {
			return log.Err("failed to seed template version", err, "version", tmpl.Version)
		}

		var existing SurveyTemplate
		if err := db.First(&existing, "name = ?", tmpl.Name).Error; err == nil {
			continue
		}
		row := SurveyTemplate{
			VersionID:  version.ID,
			Name:       tmpl.Name,
			SurveyCode: uuid.NewString(),
		}
		if err := db.Create(&row).Error; err != nil {
			return log.Err("failed to seed template", err, "name", tmpl.Name)
		}
	}

	return nil
}
