package models

import (
	"github.com/google/uuid"
)

// Organization is the root entity for multi-tenancy. Each organization has
// exactly one owner; ownership never transfers.
type Organization struct {
	BaseModel
	Name        string    `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Description string    `json:"description" gorm:"type:text"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index" validate:"required"`
	Industry    string    `json:"industry" gorm:"size:100"`
	CompanySize string    `json:"company_size" gorm:"size:50"`
	Website     string    `json:"website" gorm:"size:255"`

	// Relationships
	Owner *User  `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Teams []Team `json:"teams,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for Organization
func (Organization) TableName() string {
	return "organizations"
}
