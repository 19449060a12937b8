package service

import (
	"errors"
	"fmt"
	"time"

	"dashboard-backend/internal/database/models"
	apperrors "dashboard-backend/internal/errors"
	"dashboard-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamService handles business logic for teams and their member list
type TeamService struct {
	repo      repository.TeamRepositoryInterface
	orgRepo   repository.OrganizationRepositoryInterface
	validator *validator.Validate
}

// NewTeamService creates a new team service
func NewTeamService(repo repository.TeamRepositoryInterface, orgRepo repository.OrganizationRepositoryInterface, validator *validator.Validate) *TeamService {
	return &TeamService{
		repo:      repo,
		orgRepo:   orgRepo,
		validator: validator,
	}
}

// CreateTeamRequest represents the request to create a team
type CreateTeamRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
	Name           string    `json:"name" validate:"required,min=1,max=100"`
	Description    string    `json:"description"`
	Permissions    []string  `json:"permissions,omitempty"`
}

// UpdateTeamRequest represents the request to update a team
type UpdateTeamRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string  `json:"description"`
	Permissions []string `json:"permissions,omitempty"`
}

// AddMemberRequest represents the request to add a member to a team
type AddMemberRequest struct {
	UserID  uuid.UUID `json:"user_id" validate:"required"`
	Role    string    `json:"role" example:"member"` // defaults to "member" when empty
	AddedBy uuid.UUID `json:"-"`
}

// TeamMemberResponse represents one membership in a team response
type TeamMemberResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	UserEmail string    `json:"user_email,omitempty"`
	Role      string    `json:"role"`
	AddedAt   time.Time `json:"added_at"`
	AddedBy   uuid.UUID `json:"added_by"`
}

// TeamResponse represents the response for team operations
type TeamResponse struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	OrganizationID uuid.UUID            `json:"organization_id"`
	Permissions    []string             `json:"permissions"`
	Members        []TeamMemberResponse `json:"members,omitempty"`
	MembersCount   int                  `json:"members_count"`
	CreatedBy      uuid.UUID            `json:"created_by"`
	CreatedAt      time.Time            `json:"created_at"`
}

// TeamListResponse represents a paginated list of teams
type TeamListResponse struct {
	Teams    []TeamResponse `json:"teams"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Create creates a new team with an empty member list
func (s *TeamService) Create(createdBy uuid.UUID, req *CreateTeamRequest) (*TeamResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Validate organization exists
	if _, err := s.orgRepo.GetByID(req.OrganizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to verify organization: %w", err)
	}

	team := &models.Team{
		Name:           req.Name,
		Description:    req.Description,
		OrganizationID: req.OrganizationID,
		Permissions:    req.Permissions,
		MembersCount:   0,
		CreatedByID:    createdBy,
	}

	if err := s.repo.Create(team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return teamToResponse(team), nil
}

// GetByID retrieves a team with its member list
func (s *TeamService) GetByID(id uuid.UUID) (*TeamResponse, error) {
	team, err := s.repo.GetWithMembers(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return teamToResponse(team), nil
}

// GetByOrganization retrieves teams for an organization with pagination
func (s *TeamService) GetByOrganization(orgID uuid.UUID, page, pageSize int) (*TeamListResponse, error) {
	if _, err := s.orgRepo.GetByID(orgID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to verify organization: %w", err)
	}

	offset := (page - 1) * pageSize
	teams, total, err := s.repo.GetByOrganizationID(orgID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}

	responses := make([]TeamResponse, len(teams))
	for i := range teams {
		responses[i] = *teamToResponse(&teams[i])
	}

	return &TeamListResponse{
		Teams:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetByUser retrieves all teams the user belongs to
func (s *TeamService) GetByUser(userID uuid.UUID) ([]TeamResponse, error) {
	teams, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	responses := make([]TeamResponse, len(teams))
	for i := range teams {
		responses[i] = *teamToResponse(&teams[i])
	}
	return responses, nil
}

// Update updates a team's name, description or permission set
func (s *TeamService) Update(id uuid.UUID, req *UpdateTeamRequest) (*TeamResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	team, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	if req.Name != nil {
		team.Name = *req.Name
	}
	if req.Description != nil {
		team.Description = *req.Description
	}
	if req.Permissions != nil {
		team.Permissions = req.Permissions
	}

	if err := s.repo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return teamToResponse(team), nil
}

// Delete deletes a team
func (s *TeamService) Delete(id uuid.UUID) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team: %w", err)
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

// AddMember adds a user to the team. The role is validated before any
// mutation; members_count is maintained in the same transaction as the
// member row.
func (s *TeamService) AddMember(teamID uuid.UUID, req *AddMemberRequest) (*TeamResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	role := models.TeamRole(req.Role)
	if req.Role == "" {
		role = models.TeamRoleMember
	}
	if !role.IsValid() {
		return nil, apperrors.ErrInvalidTeamRole
	}

	member := &models.TeamMember{
		TeamID:    teamID,
		UserID:    req.UserID,
		Role:      role,
		AddedAt:   time.Now(),
		AddedByID: req.AddedBy,
	}

	if err := s.repo.AddMember(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrTeamMemberExists
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return s.GetByID(teamID)
}

// RemoveMember removes a user from the team
func (s *TeamService) RemoveMember(teamID, userID uuid.UUID) (*TeamResponse, error) {
	if err := s.repo.RemoveMember(teamID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTeamMemberNotFound
		}
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}
	return s.GetByID(teamID)
}

// UpdateMemberRole changes the stored role of an existing membership
func (s *TeamService) UpdateMemberRole(teamID, userID uuid.UUID, role string) (*TeamResponse, error) {
	teamRole := models.TeamRole(role)
	if !teamRole.IsValid() {
		return nil, apperrors.ErrInvalidTeamRole
	}

	if err := s.repo.UpdateMemberRole(teamID, userID, teamRole); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTeamMemberNotFound
		}
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}
	return s.GetByID(teamID)
}

// AddPermission adds a permission string to the team's permission set
func (s *TeamService) AddPermission(teamID uuid.UUID, permission string) (*TeamResponse, error) {
	if permission == "" {
		return nil, apperrors.NewValidationError("permission", "must not be empty")
	}
	if _, err := s.repo.GetByID(teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if err := s.repo.AddPermission(teamID, permission); err != nil {
		return nil, fmt.Errorf("failed to add permission: %w", err)
	}
	return s.GetByID(teamID)
}

// RemovePermission removes a permission string from the team's permission set
func (s *TeamService) RemovePermission(teamID uuid.UUID, permission string) (*TeamResponse, error) {
	if _, err := s.repo.GetByID(teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if err := s.repo.RemovePermission(teamID, permission); err != nil {
		return nil, fmt.Errorf("failed to remove permission: %w", err)
	}
	return s.GetByID(teamID)
}

// teamToResponse converts a team model to its response shape. Shared with the
// invitation accept flow.
func teamToResponse(team *models.Team) *TeamResponse {
	resp := &TeamResponse{
		ID:             team.ID,
		Name:           team.Name,
		Description:    team.Description,
		OrganizationID: team.OrganizationID,
		Permissions:    team.Permissions,
		MembersCount:   team.MembersCount,
		CreatedBy:      team.CreatedByID,
		CreatedAt:      team.CreatedAt,
	}
	if resp.Permissions == nil {
		resp.Permissions = []string{}
	}
	for _, m := range team.Members {
		member := TeamMemberResponse{
			UserID:  m.UserID,
			Role:    string(m.Role),
			AddedAt: m.AddedAt,
			AddedBy: m.AddedByID,
		}
		if m.User != nil {
			member.UserName = m.User.Name
			member.UserEmail = m.User.Email
		}
		resp.Members = append(resp.Members, member)
	}
	return resp
}
