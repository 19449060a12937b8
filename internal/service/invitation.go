package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"dashboard-backend/internal/database/models"
	apperrors "dashboard-backend/internal/errors"
	"dashboard-backend/internal/logger"
	"dashboard-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvitationService handles the invitation lifecycle: issuing tokens,
// validating them, and resolving them into team memberships. It is the single
// gate through which invited members enter a team.
type InvitationService struct {
	repo      repository.InvitationRepositoryInterface
	teamRepo  repository.TeamRepositoryInterface
	userRepo  repository.UserRepositoryInterface
	notifier  Notifier
	validator *validator.Validate
	ttl       time.Duration
	log       *logger.Logger
}

// NewInvitationService creates a new invitation service. ttl is the expiry
// window for newly issued invitations.
func NewInvitationService(
	repo repository.InvitationRepositoryInterface,
	teamRepo repository.TeamRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	notifier Notifier,
	validator *validator.Validate,
	ttl time.Duration,
) *InvitationService {
	return &InvitationService{
		repo:      repo,
		teamRepo:  teamRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		validator: validator,
		ttl:       ttl,
		log:       logger.New(),
	}
}

// NewInvitationToken returns a fresh opaque invitation token: 32 bytes from
// the CSPRNG, hex encoded (256 bits of entropy).
func NewInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// CreateInvitationRequest represents the data needed to issue an invitation
type CreateInvitationRequest struct {
	Email          string    `json:"email" validate:"required,email,max=255"`
	TeamID         uuid.UUID `json:"team_id" validate:"required"`
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
	Role           string    `json:"role" example:"member"` // defaults to "member" when empty
	InvitedBy      uuid.UUID `json:"-"`
}

// InvitationResponse represents the response data for an invitation
type InvitationResponse struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	TeamID           uuid.UUID `json:"team_id"`
	TeamName         string    `json:"team_name,omitempty"`
	OrganizationID   uuid.UUID `json:"organization_id"`
	OrganizationName string    `json:"organization_name,omitempty"`
	Role             string    `json:"role"`
	InvitedBy        uuid.UUID `json:"invited_by"`
	InviterName      string    `json:"inviter_name,omitempty"`
	Status           string    `json:"status"`
	Token            string    `json:"token"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// InvitationEmailData carries the display fields for the invitation mail
type InvitationEmailData struct {
	Token            string
	TeamName         string
	OrganizationName string
	InviterName      string
	Role             string
	ExpiresAt        time.Time
}

// Create issues a new pending invitation. The role is validated before any
// persistence. Notification dispatch is best-effort: a delivery failure is
// logged and swallowed, and the invitation is still returned successfully.
func (s *InvitationService) Create(req *CreateInvitationRequest) (*InvitationResponse, error) {
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

	token, err := NewInvitationToken()
	if err != nil {
		return nil, err
	}

	invitation := &models.Invitation{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		TeamID:         req.TeamID,
		OrganizationID: req.OrganizationID,
		Role:           role,
		InvitedByID:    req.InvitedBy,
		Status:         models.InvitationStatusPending,
		Token:          token,
		ExpiresAt:      time.Now().Add(s.ttl),
	}

	if err := s.repo.Create(invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	// Re-read with display relations for the response and the mail
	persisted, err := s.repo.GetByToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to load created invitation: %w", err)
	}

	s.dispatchNotification(persisted)

	return s.toResponse(persisted), nil
}

// dispatchNotification sends the invitation mail on a detached goroutine.
// The invitation's validity never depends on notification success.
func (s *InvitationService) dispatchNotification(invitation *models.Invitation) {
	if s.notifier == nil {
		return
	}

	data := InvitationEmailData{
		Token:     invitation.Token,
		Role:      string(invitation.Role),
		ExpiresAt: invitation.ExpiresAt,
	}
	if invitation.Team != nil {
		data.TeamName = invitation.Team.Name
	}
	if invitation.Organization != nil {
		data.OrganizationName = invitation.Organization.Name
	}
	if invitation.InvitedBy != nil {
		data.InviterName = invitation.InvitedBy.Name
	}

	email := invitation.Email
	go func() {
		if err := s.notifier.SendInvitation(email, data); err != nil {
			s.log.WithField("email", email).Errorf("failed to send invitation email: %v", err)
		}
	}()
}

// GetByToken retrieves an invitation by token without touching its status or
// expiry, so callers can still show details for resolved invitations.
func (s *InvitationService) GetByToken(token string) (*InvitationResponse, error) {
	invitation, err := s.repo.GetByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return s.toResponse(invitation), nil
}

// IsValid reports whether a token identifies a pending, unexpired invitation.
// A pending invitation past its expiry is lazily transitioned to expired as a
// side effect. Every accept/reject path calls this before mutating state.
func (s *InvitationService) IsValid(token string) (bool, error) {
	invitation, err := s.repo.GetByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get invitation: %w", err)
	}

	if invitation.Status != models.InvitationStatusPending {
		return false, nil
	}

	if time.Now().After(invitation.ExpiresAt) {
		if err := s.repo.MarkExpired(invitation.ID); err != nil {
			return false, fmt.Errorf("failed to expire invitation: %w", err)
		}
		return false, nil
	}

	return true, nil
}

// GetByEmail retrieves all pending invitations for an address, newest first
func (s *InvitationService) GetByEmail(email string) ([]InvitationResponse, error) {
	invitations, err := s.repo.GetPendingByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get invitations: %w", err)
	}
	return s.toResponses(invitations), nil
}

// GetByTeam retrieves all invitations ever issued for a team, newest first
func (s *InvitationService) GetByTeam(teamID uuid.UUID) ([]InvitationResponse, error) {
	invitations, err := s.repo.GetByTeamID(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitations: %w", err)
	}
	return s.toResponses(invitations), nil
}

// AcceptInvitation resolves a pending invitation for the accepting user and
// admits them into the team. The membership is added first and the
// compare-and-swap accept is the durable commit: a crash between the two
// steps leaves a pending invitation whose membership already exists, and a
// retried accept treats that as already applied.
func (s *InvitationService) AcceptInvitation(token string, userID uuid.UUID) (*TeamResponse, error) {
	valid, err := s.IsValid(token)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, apperrors.ErrInvitationNotPending
	}

	invitation, err := s.repo.GetByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !strings.EqualFold(user.Email, invitation.Email) {
		return nil, apperrors.ErrInvitationEmailMismatch
	}

	member := &models.TeamMember{
		TeamID:    invitation.TeamID,
		UserID:    userID,
		Role:      invitation.Role,
		AddedAt:   time.Now(),
		AddedByID: invitation.InvitedByID,
	}
	if err := s.teamRepo.AddMember(member); err != nil {
		// An existing membership means a previous accept attempt crashed
		// after the add; proceed to the commit.
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrTeamNotFound
			}
			return nil, fmt.Errorf("failed to add member: %w", err)
		}
	}

	if _, err := s.repo.Transition(token, models.InvitationStatusAccepted); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvitationNotPending
		}
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	team, err := s.teamRepo.GetWithMembers(invitation.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	return teamToResponse(team), nil
}

// RejectInvitation resolves a pending invitation as rejected after verifying
// the acting user's email matches the invitation.
func (s *InvitationService) RejectInvitation(token string, userID uuid.UUID) error {
	invitation, err := s.repo.GetByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvitationNotFound
		}
		return fmt.Errorf("failed to get invitation: %w", err)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if !strings.EqualFold(user.Email, invitation.Email) {
		return apperrors.ErrInvitationEmailMismatch
	}

	if _, err := s.repo.Transition(token, models.InvitationStatusRejected); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvitationNotPending
		}
		return fmt.Errorf("failed to reject invitation: %w", err)
	}
	return nil
}

// ExpireOld bulk-expires pending invitations past their expiry and returns
// how many were transitioned. Safe to run repeatedly or concurrently with
// the lazy path in IsValid.
func (s *InvitationService) ExpireOld() (int64, error) {
	count, err := s.repo.ExpireOld()
	if err != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", err)
	}
	if count > 0 {
		s.log.Infof("expired %d stale invitations", count)
	}
	return count, nil
}

func (s *InvitationService) toResponse(invitation *models.Invitation) *InvitationResponse {
	resp := &InvitationResponse{
		ID:             invitation.ID,
		Email:          invitation.Email,
		TeamID:         invitation.TeamID,
		OrganizationID: invitation.OrganizationID,
		Role:           string(invitation.Role),
		InvitedBy:      invitation.InvitedByID,
		Status:         string(invitation.Status),
		Token:          invitation.Token,
		ExpiresAt:      invitation.ExpiresAt,
		CreatedAt:      invitation.CreatedAt,
	}
	if invitation.Team != nil {
		resp.TeamName = invitation.Team.Name
	}
	if invitation.Organization != nil {
		resp.OrganizationName = invitation.Organization.Name
	}
	if invitation.InvitedBy != nil {
		resp.InviterName = invitation.InvitedBy.Name
	}
	return resp
}

func (s *InvitationService) toResponses(invitations []models.Invitation) []InvitationResponse {
	responses := make([]InvitationResponse, len(invitations))
	for i := range invitations {
		responses[i] = *s.toResponse(&invitations[i])
	}
	return responses
}
