package models

// EmailTemplate bodies use {{placeholder}} tokens resolved by the render
// package. A nil OrganizationID marks a public template usable by any
// organization. Name is unique within its organization scope.
type EmailTemplate struct {
	BaseUUIDModel
	OrganizationID *string `gorm:"type:varchar(64);index;uniqueIndex:idx_org_template_name" json:"organizationId"`
	Name           string  `gorm:"type:varchar(120);not null;uniqueIndex:idx_org_template_name" json:"name"`
	Subject        string  `gorm:"type:varchar(255);not null" json:"subject"`
	HTMLBody       string  `gorm:"type:text"                  json:"htmlBody"`
	TextBody       string  `gorm:"type:text"                  json:"textBody"`
}

type CreateEmailTemplateRequest struct {
	OrganizationID *string `json:"organization_id"`
	Name           string  `json:"name"`
	Subject        string  `json:"subject"`
	HTMLBody       string  `json:"html_body"`
	TextBody       string  `json:"text_body"`
}
