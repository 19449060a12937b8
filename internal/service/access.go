package service

import (
	"errors"
	"fmt"

	"dashboard-backend/internal/database/models"
	"dashboard-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessService derives what a user may do from the organization and team
// model. It holds no state and performs no writes; it is a predicate library,
// not an enforcement point. Callers gate mutations on its answers.
//
// The model is two-layered: organization ownership is a hard singular fact,
// while team role is a soft per-team fact. Each method collapses the layering
// into a single answer.
type AccessService struct {
	orgRepo  repository.OrganizationRepositoryInterface
	teamRepo repository.TeamRepositoryInterface
}

// NewAccessService creates a new access service
func NewAccessService(orgRepo repository.OrganizationRepositoryInterface, teamRepo repository.TeamRepositoryInterface) *AccessService {
	return &AccessService{
		orgRepo:  orgRepo,
		teamRepo: teamRepo,
	}
}

// IsOrganizationOwner reports whether the organization's stored owner is the
// given user. Every other management predicate short-circuits true on this.
func (s *AccessService) IsOrganizationOwner(userID, organizationID uuid.UUID) (bool, error) {
	org, err := s.orgRepo.GetByID(organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get organization: %w", err)
	}
	return org.OwnerID == userID, nil
}

// IsTeamMember reports whether the user appears in the team's member list,
// with any role.
func (s *AccessService) IsTeamMember(userID, teamID uuid.UUID) (bool, error) {
	_, err := s.teamRepo.GetMember(teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get membership: %w", err)
	}
	return true, nil
}

// GetUserTeamRole returns the user's stored role in the team, or nil when the
// user is not a member.
func (s *AccessService) GetUserTeamRole(userID, teamID uuid.UUID) (*models.TeamRole, error) {
	member, err := s.teamRepo.GetMember(teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	role := member.Role
	return &role, nil
}

// CanManageTeam is the single predicate gating team update/delete, member
// mutations, permission mutations, and invitation issuance. The organization
// owner may manage every team in the organization regardless of membership;
// otherwise only a stored manager role qualifies.
func (s *AccessService) CanManageTeam(userID, teamID uuid.UUID) (bool, error) {
	team, err := s.teamRepo.GetByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get team: %w", err)
	}

	isOwner, err := s.IsOrganizationOwner(userID, team.OrganizationID)
	if err != nil {
		return false, err
	}
	if isOwner {
		return true, nil
	}

	role, err := s.GetUserTeamRole(userID, teamID)
	if err != nil {
		return false, err
	}
	return role != nil && *role == models.TeamRoleManager, nil
}

// HasPermission reports whether any team the user belongs to within the
// organization grants the named permission string. Independent of role.
func (s *AccessService) HasPermission(userID, organizationID uuid.UUID, permission string) (bool, error) {
	teams, err := s.teamRepo.GetByUserID(userID)
	if err != nil {
		return false, fmt.Errorf("failed to get teams: %w", err)
	}

	for _, team := range teams {
		if team.OrganizationID != organizationID {
			continue
		}
		for _, p := range team.Permissions {
			if p == permission {
				return true, nil
			}
		}
	}
	return false, nil
}

// HasRolePermission checks the role hierarchy: admin (org owner) > manager
// (team manager) > member (team member).
func (s *AccessService) HasRolePermission(userID, organizationID uuid.UUID, required models.OrgRole) (bool, error) {
	role, err := s.GetUserOrgRole(userID, organizationID)
	if err != nil {
		return false, err
	}
	if role == nil {
		return false, nil
	}

	switch required {
	case models.OrgRoleAdmin:
		return *role == models.OrgRoleAdmin, nil
	case models.OrgRoleManager:
		return *role == models.OrgRoleAdmin || *role == models.OrgRoleManager, nil
	case models.OrgRoleMember:
		return true, nil
	}
	return false, nil
}

// GetUserOrgRole derives the user's highest role in the organization for
// display: admin when organization owner, manager when a manager in any team
// of the organization, member when present in any team, nil when unrelated.
func (s *AccessService) GetUserOrgRole(userID, organizationID uuid.UUID) (*models.OrgRole, error) {
	isOwner, err := s.IsOrganizationOwner(userID, organizationID)
	if err != nil {
		return nil, err
	}
	if isOwner {
		role := models.OrgRoleAdmin
		return &role, nil
	}

	teams, err := s.teamRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}

	inOrg := false
	for _, team := range teams {
		if team.OrganizationID != organizationID {
			continue
		}
		inOrg = true
		teamRole, err := s.GetUserTeamRole(userID, team.ID)
		if err != nil {
			return nil, err
		}
		if teamRole != nil && *teamRole == models.TeamRoleManager {
			role := models.OrgRoleManager
			return &role, nil
		}
	}

	if !inOrg {
		return nil, nil
	}
	role := models.OrgRoleMember
	return &role, nil
}
