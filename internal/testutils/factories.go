package testutils

import (
	"fmt"
	"time"

	"dashboard-backend/internal/database/models"

	"github.com/google/uuid"
)

// UserFactory provides methods to create test User data
type UserFactory struct{}

// NewUserFactory creates a new UserFactory
func NewUserFactory() *UserFactory {
	return &UserFactory{}
}

// Create creates a test User with default values
func (f *UserFactory) Create() *models.User {
	id := uuid.New()
	return &models.User{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:         "Test User",
		Email:        fmt.Sprintf("user-%s@test.com", id.String()[:8]),
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
	}
}

// WithEmail sets a custom email for the user
func (f *UserFactory) WithEmail(email string) *models.User {
	user := f.Create()
	user.Email = email
	return user
}

// WithName sets a custom name for the user
func (f *UserFactory) WithName(name string) *models.User {
	user := f.Create()
	user.Name = name
	return user
}

// OrganizationFactory provides methods to create test Organization data
type OrganizationFactory struct{}

// NewOrganizationFactory creates a new OrganizationFactory
func NewOrganizationFactory() *OrganizationFactory {
	return &OrganizationFactory{}
}

// Create creates a test Organization owned by the given user
func (f *OrganizationFactory) Create(ownerID uuid.UUID) *models.Organization {
	return &models.Organization{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:        "Test Organization",
		Description: "A test organization",
		OwnerID:     ownerID,
		Industry:    "software",
		CompanySize: "11-50",
	}
}

// WithName sets a custom name for the organization
func (f *OrganizationFactory) WithName(ownerID uuid.UUID, name string) *models.Organization {
	org := f.Create(ownerID)
	org.Name = name
	return org
}

// TeamFactory provides methods to create test Team data
type TeamFactory struct{}

// NewTeamFactory creates a new TeamFactory
func NewTeamFactory() *TeamFactory {
	return &TeamFactory{}
}

// Create creates a test Team in the given organization
func (f *TeamFactory) Create(orgID, createdBy uuid.UUID) *models.Team {
	return &models.Team{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:           "Test Team",
		Description:    "A test team",
		OrganizationID: orgID,
		MembersCount:   0,
		CreatedByID:    createdBy,
	}
}

// WithPermissions sets the team's permission set
func (f *TeamFactory) WithPermissions(orgID, createdBy uuid.UUID, permissions []string) *models.Team {
	team := f.Create(orgID, createdBy)
	team.Permissions = permissions
	return team
}

// TeamMemberFactory provides methods to create test TeamMember data
type TeamMemberFactory struct{}

// NewTeamMemberFactory creates a new TeamMemberFactory
func NewTeamMemberFactory() *TeamMemberFactory {
	return &TeamMemberFactory{}
}

// Create creates a test membership with the member role
func (f *TeamMemberFactory) Create(teamID, userID, addedBy uuid.UUID) *models.TeamMember {
	return &models.TeamMember{
		ID:        uuid.New(),
		TeamID:    teamID,
		UserID:    userID,
		Role:      models.TeamRoleMember,
		AddedAt:   time.Now(),
		AddedByID: addedBy,
	}
}

// WithRole sets a custom role for the membership
func (f *TeamMemberFactory) WithRole(teamID, userID, addedBy uuid.UUID, role models.TeamRole) *models.TeamMember {
	member := f.Create(teamID, userID, addedBy)
	member.Role = role
	return member
}

// InvitationFactory provides methods to create test Invitation data
type InvitationFactory struct{}

// NewInvitationFactory creates a new InvitationFactory
func NewInvitationFactory() *InvitationFactory {
	return &InvitationFactory{}
}

// Create creates a pending invitation expiring in 7 days
func (f *InvitationFactory) Create(email string, teamID, orgID, invitedBy uuid.UUID) *models.Invitation {
	id := uuid.New()
	return &models.Invitation{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Email:          email,
		TeamID:         teamID,
		OrganizationID: orgID,
		Role:           models.TeamRoleMember,
		InvitedByID:    invitedBy,
		Status:         models.InvitationStatusPending,
		Token:          fmt.Sprintf("%032x%032x", id[:], id[:]),
		ExpiresAt:      time.Now().Add(7 * 24 * time.Hour),
	}
}

// Expired creates a pending invitation whose expiry is already past
func (f *InvitationFactory) Expired(email string, teamID, orgID, invitedBy uuid.UUID) *models.Invitation {
	inv := f.Create(email, teamID, orgID, invitedBy)
	inv.ExpiresAt = time.Now().Add(-time.Hour)
	return inv
}

// WithStatus creates an invitation in the given state
func (f *InvitationFactory) WithStatus(email string, teamID, orgID, invitedBy uuid.UUID, status models.InvitationStatus) *models.Invitation {
	inv := f.Create(email, teamID, orgID, invitedBy)
	inv.Status = status
	return inv
}

// FactorySet provides access to all factories
type FactorySet struct {
	Users         *UserFactory
	Organizations *OrganizationFactory
	Teams         *TeamFactory
	TeamMembers   *TeamMemberFactory
	Invitations   *InvitationFactory
}

// NewFactorySet creates a new FactorySet with all factories initialized
func NewFactorySet() *FactorySet {
	return &FactorySet{
		Users:         NewUserFactory(),
		Organizations: NewOrganizationFactory(),
		Teams:         NewTeamFactory(),
		TeamMembers:   NewTeamMemberFactory(),
		Invitations:   NewInvitationFactory(),
	}
}
