package service

import (
	"dashboard-backend/internal/database/models"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/service_mocks.go -package=mocks

// UserServiceInterface defines the interface for user service operations
type UserServiceInterface interface {
	Register(req *RegisterUserRequest) (*UserResponse, error)
	GetByID(id uuid.UUID) (*UserResponse, error)
	GetByEmail(email string) (*UserResponse, error)
	UpdateProfile(id uuid.UUID, req *UpdateUserRequest) (*UserResponse, error)
}

// OrganizationServiceInterface defines the interface for organization service operations
type OrganizationServiceInterface interface {
	Create(ownerID uuid.UUID, req *CreateOrganizationRequest) (*OrganizationResponse, error)
	GetByID(id uuid.UUID) (*OrganizationResponse, error)
	GetByUser(userID uuid.UUID) ([]OrganizationResponse, error)
	GetByOwner(ownerID uuid.UUID) ([]OrganizationResponse, error)
	GetTeams(id uuid.UUID) ([]TeamResponse, error)
	Update(id uuid.UUID, req *UpdateOrganizationRequest) (*OrganizationResponse, error)
	Delete(id uuid.UUID) error
}

// TeamServiceInterface defines the interface for team service operations
type TeamServiceInterface interface {
	Create(createdBy uuid.UUID, req *CreateTeamRequest) (*TeamResponse, error)
	GetByID(id uuid.UUID) (*TeamResponse, error)
	GetByOrganization(orgID uuid.UUID, page, pageSize int) (*TeamListResponse, error)
	GetByUser(userID uuid.UUID) ([]TeamResponse, error)
	Update(id uuid.UUID, req *UpdateTeamRequest) (*TeamResponse, error)
	Delete(id uuid.UUID) error
	AddMember(teamID uuid.UUID, req *AddMemberRequest) (*TeamResponse, error)
	RemoveMember(teamID, userID uuid.UUID) (*TeamResponse, error)
	UpdateMemberRole(teamID, userID uuid.UUID, role string) (*TeamResponse, error)
	AddPermission(teamID uuid.UUID, permission string) (*TeamResponse, error)
	RemovePermission(teamID uuid.UUID, permission string) (*TeamResponse, error)
}

// InvitationServiceInterface defines the interface for invitation service operations
type InvitationServiceInterface interface {
	Create(req *CreateInvitationRequest) (*InvitationResponse, error)
	GetByToken(token string) (*InvitationResponse, error)
	IsValid(token string) (bool, error)
	GetByEmail(email string) ([]InvitationResponse, error)
	GetByTeam(teamID uuid.UUID) ([]InvitationResponse, error)
	AcceptInvitation(token string, userID uuid.UUID) (*TeamResponse, error)
	RejectInvitation(token string, userID uuid.UUID) error
	ExpireOld() (int64, error)
}

// AccessServiceInterface defines the interface for permission resolution.
// All methods are read-only predicates; enforcement happens at the caller.
type AccessServiceInterface interface {
	IsOrganizationOwner(userID, organizationID uuid.UUID) (bool, error)
	IsTeamMember(userID, teamID uuid.UUID) (bool, error)
	GetUserTeamRole(userID, teamID uuid.UUID) (*models.TeamRole, error)
	CanManageTeam(userID, teamID uuid.UUID) (bool, error)
	HasPermission(userID, organizationID uuid.UUID, permission string) (bool, error)
	HasRolePermission(userID, organizationID uuid.UUID, required models.OrgRole) (bool, error)
	GetUserOrgRole(userID, organizationID uuid.UUID) (*models.OrgRole, error)
}

// Notifier dispatches best-effort invitation notifications. Failures are
// logged by callers and never propagated into the primary operation.
type Notifier interface {
	SendInvitation(email string, data InvitationEmailData) error
}
