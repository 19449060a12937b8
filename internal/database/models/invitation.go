package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the lifecycle state of an invitation. An invitation is
// created pending and transitions exactly once into a terminal state.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRejected InvitationStatus = "rejected"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// IsValid checks if the InvitationStatus is valid
func (s InvitationStatus) IsValid() bool {
	switch s {
	case InvitationStatusPending, InvitationStatusAccepted, InvitationStatusRejected, InvitationStatusExpired:
		return true
	}
	return false
}

// Invitation is a time-bounded token that, once accepted, admits a user into a
// team. It is addressed externally only by its token, never by id.
type Invitation struct {
	BaseModel
	Email          string           `json:"email" gorm:"not null;size:255;index:idx_invitations_email_team" validate:"required,email,max=255"`
	TeamID         uuid.UUID        `json:"team_id" gorm:"type:uuid;not null;index:idx_invitations_email_team;index" validate:"required"`
	OrganizationID uuid.UUID        `json:"organization_id" gorm:"type:uuid;not null" validate:"required"`
	Role           TeamRole         `json:"role" gorm:"type:varchar(20);not null;default:'member'" validate:"required"`
	InvitedByID    uuid.UUID        `json:"invited_by" gorm:"type:uuid;not null" validate:"required"`
	Status         InvitationStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Token          string           `json:"token" gorm:"uniqueIndex;not null;size:64"`
	ExpiresAt      time.Time        `json:"expires_at" gorm:"not null;index"`

	// Relationships resolved at read time for display, never cached
	Team         *Team         `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	InvitedBy    *User         `json:"invited_by_user,omitempty" gorm:"foreignKey:InvitedByID"`
}

// TableName returns the table name for Invitation
func (Invitation) TableName() string {
	return "invitations"
}
