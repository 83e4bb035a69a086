package initialize

import (
	"surveyhub/config"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"

	"gorm.io/gorm"
)

// questionTypeNames is the fixed reference vocabulary. Rows are inserted
// once; reruns are no-ops.
var questionTypeNames = []string{
	"text",
	"textarea",
	"number",
	"date",
	"single_choice",
	"multiple_choice",
	"rating",
	"boolean",
}

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := db.AutoMigrate(
		&OrganizationType{},
		&Organization{},
		&User{},
		&UserDetails{},
		&UserOrganizationTitle{},
		&GeoLocation{},
		&SurveyTemplateVersion{},
		&SurveyTemplate{},
		&QuestionType{},
		&Question{},
		&QuestionOption{},
		&SurveyResponse{},
		&EmailTemplate{},
	); err != nil {
		return log.Err("failed to migrate tables", err)
	}

	for _, name := range questionTypeNames {
		var existing QuestionType
		if err := db.First(&existing, "name = ?", name).Error; err == nil {
			continue
		}
		if err := db.Create(&QuestionType{Name: name}).Error; err != nil {
			return log.Err("failed to seed question type", err, "name", name)
		}
	}

	log.Info("Table initialization complete")
	return nil
}
