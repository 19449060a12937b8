package repository

import (
	"dashboard-backend/internal/database/models"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/repository_mocks.go -package=mocks

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uuid.UUID) error
}

// OrganizationRepositoryInterface defines the interface for organization repository operations
type OrganizationRepositoryInterface interface {
	Create(org *models.Organization) error
	GetByID(id uuid.UUID) (*models.Organization, error)
	GetWithTeams(id uuid.UUID) (*models.Organization, error)
	GetByOwnerID(ownerID uuid.UUID) ([]models.Organization, error)
	GetByUserID(userID uuid.UUID) ([]models.Organization, error)
	Update(org *models.Organization) error
	Delete(id uuid.UUID) error
}

// TeamRepositoryInterface defines the interface for team repository operations
type TeamRepositoryInterface interface {
	Create(team *models.Team) error
	GetByID(id uuid.UUID) (*models.Team, error)
	GetWithMembers(id uuid.UUID) (*models.Team, error)
	GetByOrganizationID(orgID uuid.UUID, limit, offset int) ([]models.Team, int64, error)
	GetByUserID(userID uuid.UUID) ([]models.Team, error)
	Update(team *models.Team) error
	Delete(id uuid.UUID) error
	GetMember(teamID, userID uuid.UUID) (*models.TeamMember, error)
	AddMember(member *models.TeamMember) error
	RemoveMember(teamID, userID uuid.UUID) error
	UpdateMemberRole(teamID, userID uuid.UUID, role models.TeamRole) error
	AddPermission(teamID uuid.UUID, permission string) error
	RemovePermission(teamID uuid.UUID, permission string) error
}

// InvitationRepositoryInterface defines the interface for invitation repository operations
type InvitationRepositoryInterface interface {
	Create(invitation *models.Invitation) error
	GetByToken(token string) (*models.Invitation, error)
	GetPendingByEmail(email string) ([]models.Invitation, error)
	GetByTeamID(teamID uuid.UUID) ([]models.Invitation, error)
	Transition(token string, to models.InvitationStatus) (*models.Invitation, error)
	MarkExpired(id uuid.UUID) error
	ExpireOld() (int64, error)
	Delete(id uuid.UUID) error
}
