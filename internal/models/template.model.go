package models

type SurveyTemplateVersion struct {
	BaseUUIDModel
	Name           string  `gorm:"type:varchar(255);not null" json:"name"`
	OrganizationID *string `gorm:"type:varchar(64);index"     json:"organizationId"`

	Templates []SurveyTemplate `gorm:"foreignKey:VersionID" json:"templates,omitempty"`
}

// SurveyTemplate.SurveyCode is the human-facing template identifier, distinct
// from the per-user and per-response survey codes.
type SurveyTemplate struct {
	BaseUUIDModel
	VersionID  string  `gorm:"type:varchar(64);not null;index"        json:"versionId"`
	Name       string  `gorm:"type:varchar(255);not null"             json:"name"`
	SurveyCode string  `gorm:"type:varchar(64);uniqueIndex;not null"  json:"surveyCode"`
	Sections   JSONMap `gorm:"type:text"                              json:"sections"`

	Version   *SurveyTemplateVersion `gorm:"foreignKey:VersionID"  json:"version,omitempty"`
	Questions []Question             `gorm:"foreignKey:TemplateID" json:"questions,omitempty"`
}

type QuestionType struct {
	BaseModel
	Name string `gorm:"type:varchar(60);uniqueIndex;not null" json:"name"`
}

type Question struct {
	BaseUUIDModel
	TemplateID     string  `gorm:"type:varchar(64);not null;index" json:"templateId"`
	QuestionTypeID int     `gorm:"not null"                        json:"questionTypeId"`
	Text           string  `gorm:"type:text;not null"              json:"text"`
	Order          int     `gorm:"not null"                        json:"order"`
	IsRequired     bool    `gorm:"not null;default:false"          json:"isRequired"`
	Config         JSONMap `gorm:"type:text"                       json:"config"`

	QuestionType *QuestionType    `gorm:"foreignKey:QuestionTypeID" json:"questionType,omitempty"`
	Options      []QuestionOption `gorm:"foreignKey:QuestionID"     json:"options,omitempty"`
}

type QuestionOption struct {
	BaseUUIDModel
	QuestionID string `gorm:"type:varchar(64);not null;index" json:"questionId"`
	Label      string `gorm:"type:varchar(255);not null"      json:"label"`
	Value      string `gorm:"type:varchar(255)"               json:"value"`
	Order      int    `gorm:"not null"                        json:"order"`
}

type CreateTemplateRequest struct {
	VersionID  string  `json:"version_id"`
	Name       string  `json:"name"`
	SurveyCode string  `json:"survey_code"`
	Sections   JSONMap `json:"sections"`
}

type CreateQuestionRequest struct {
	QuestionTypeID int     `json:"question_type_id"`
	Text           string  `json:"text"`
	Order          int     `json:"order"`
	IsRequired     bool    `json:"is_required"`
	Config         JSONMap `json:"config"`
}
