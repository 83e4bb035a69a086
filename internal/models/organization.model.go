package models

type OrganizationType struct {
	BaseModel
	Name string `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
}

// Organization contact/head links are independent of the member users'
// OrganizationID back-references. Deleting an organization nulls these links
// rather than cascading into users.
type Organization struct {
	BaseUUIDModel
	Name               string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	OrganizationTypeID *int    `gorm:"index"                  json:"organizationTypeId"`
	GeoLocationID      *string `gorm:"type:varchar(64)"       json:"geoLocationId"`
	PrimaryContactID   *string `gorm:"type:varchar(64)"       json:"primaryContactId"`
	SecondaryContactID *string `gorm:"type:varchar(64)"       json:"secondaryContactId"`
	HeadID             *string `gorm:"type:varchar(64)"       json:"headId"`
	Details            JSONMap `gorm:"type:text"              json:"details"`

	OrganizationType *OrganizationType `gorm:"foreignKey:OrganizationTypeID" json:"organizationType,omitempty"`
	GeoLocation      *GeoLocation      `gorm:"foreignKey:GeoLocationID"      json:"geoLocation,omitempty"`
}

type CreateOrganizationRequest struct {
	Name               string             `json:"name"`
	OrganizationTypeID *int               `json:"organization_type_id"`
	GeoLocation        *GeoLocationFields `json:"geo_location"`
	PrimaryContactID   *string            `json:"primary_contact_id"`
	SecondaryContactID *string            `json:"secondary_contact_id"`
	HeadID             *string            `json:"head_id"`
	Details            JSONMap            `json:"details"`
}

type UpdateOrganizationRequest struct {
	Name               *string `json:"name"`
	OrganizationTypeID *int    `json:"organization_type_id"`
	PrimaryContactID   *string `json:"primary_contact_id"`
	SecondaryContactID *string `json:"secondary_contact_id"`
	HeadID             *string `json:"head_id"`
	Details            JSONMap `json:"details"`
}
