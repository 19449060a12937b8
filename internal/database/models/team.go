package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TeamRole represents the stored role of a member within a team. Only two
// roles exist at the team level; organization ownership is derived at
// check-time and never stored as a team role.
type TeamRole string

const (
	TeamRoleMember  TeamRole = "member"
	TeamRoleManager TeamRole = "manager"
)

// IsValid checks if the TeamRole is valid
func (r TeamRole) IsValid() bool {
	switch r {
	case TeamRoleMember, TeamRoleManager:
		return true
	}
	return false
}

// OrgRole is the derived organization-level role used for display. It is a
// projection computed by the access resolver, never persisted.
type OrgRole string

const (
	OrgRoleAdmin   OrgRole = "admin"
	OrgRoleManager OrgRole = "manager"
	OrgRoleMember  OrgRole = "member"
)

// Team belongs to exactly one organization for its lifetime. MembersCount
// always equals the number of team_members rows; both are mutated in the same
// transaction.
type Team struct {
	BaseModel
	Name           string         `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Description    string         `json:"description" gorm:"type:text"`
	OrganizationID uuid.UUID      `json:"organization_id" gorm:"type:uuid;not null;index" validate:"required"`
	Permissions    pq.StringArray `json:"permissions" gorm:"type:text[]"`
	MembersCount   int            `json:"members_count" gorm:"not null;default:0"`
	CreatedByID    uuid.UUID      `json:"created_by" gorm:"type:uuid;not null" validate:"required"`

	// Relationships
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	CreatedBy    *User         `json:"created_by_user,omitempty" gorm:"foreignKey:CreatedByID"`
	Members      []TeamMember  `json:"members,omitempty" gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for Team
func (Team) TableName() string {
	return "teams"
}

// TeamMember is one user's membership in one team. At most one row exists per
// (team, user) pair.
type TeamMember struct {
	ID        uuid.UUID `json:"-" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID    uuid.UUID `json:"team_id" gorm:"type:uuid;not null;uniqueIndex:idx_team_members_team_user" validate:"required"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_team_members_team_user;index" validate:"required"`
	Role      TeamRole  `json:"role" gorm:"type:varchar(20);not null;default:'member'" validate:"required"`
	AddedAt   time.Time `json:"added_at" gorm:"not null"`
	AddedByID uuid.UUID `json:"added_by" gorm:"type:uuid;not null"`

	// Relationships
	User    *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	AddedBy *User `json:"added_by_user,omitempty" gorm:"foreignKey:AddedByID"`
}

// TableName returns the table name for TeamMember
func (TeamMember) TableName() string {
	return "team_members"
}
