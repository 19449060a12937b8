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

// OrganizationService handles business logic for organizations
type OrganizationService struct {
	repo      repository.OrganizationRepositoryInterface
	validator *validator.Validate
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(repo repository.OrganizationRepositoryInterface, validator *validator.Validate) *OrganizationService {
	return &OrganizationService{
		repo:      repo,
		validator: validator,
	}
}

// CreateOrganizationRequest represents the request to create an organization
type CreateOrganizationRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description"`
	Industry    string `json:"industry" validate:"max=100"`
	CompanySize string `json:"company_size" validate:"max=50"`
	Website     string `json:"website" validate:"omitempty,url,max=255"`
}

// UpdateOrganizationRequest represents the request to update an organization.
// Ownership is not updatable; no transfer operation exists.
type UpdateOrganizationRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Industry    *string `json:"industry" validate:"omitempty,max=100"`
	CompanySize *string `json:"company_size" validate:"omitempty,max=50"`
	Website     *string `json:"website" validate:"omitempty,url,max=255"`
}

// OrganizationResponse represents the response for organization operations
type OrganizationResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	OwnerName   string    `json:"owner_name,omitempty"`
	Industry    string    `json:"industry"`
	CompanySize string    `json:"company_size"`
	Website     string    `json:"website"`
	CreatedAt   time.Time `json:"created_at"`
}

// Create creates a new organization owned by the acting user
func (s *OrganizationService) Create(ownerID uuid.UUID, req *CreateOrganizationRequest) (*OrganizationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	org := &models.Organization{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
		Industry:    req.Industry,
		CompanySize: req.CompanySize,
		Website:     req.Website,
	}

	if err := s.repo.Create(org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	return s.toResponse(org), nil
}

// GetByID retrieves an organization by ID
func (s *OrganizationService) GetByID(id uuid.UUID) (*OrganizationResponse, error) {
	org, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return s.toResponse(org), nil
}

// GetByUser retrieves organizations the user owns or belongs to
func (s *OrganizationService) GetByUser(userID uuid.UUID) ([]OrganizationResponse, error) {
	orgs, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organizations: %w", err)
	}
	responses := make([]OrganizationResponse, len(orgs))
	for i := range orgs {
		responses[i] = *s.toResponse(&orgs[i])
	}
	return responses, nil
}

// GetByOwner retrieves only the organizations the user owns
func (s *OrganizationService) GetByOwner(ownerID uuid.UUID) ([]OrganizationResponse, error) {
	orgs, err := s.repo.GetByOwnerID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organizations: %w", err)
	}
	responses := make([]OrganizationResponse, len(orgs))
	for i := range orgs {
		responses[i] = *s.toResponse(&orgs[i])
	}
	return responses, nil
}

// GetTeams retrieves all teams of an organization
func (s *OrganizationService) GetTeams(id uuid.UUID) ([]TeamResponse, error) {
	org, err := s.repo.GetWithTeams(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	responses := make([]TeamResponse, len(org.Teams))
	for i := range org.Teams {
		responses[i] = *teamToResponse(&org.Teams[i])
	}
	return responses, nil
}

// Update updates an organization's profile fields
func (s *OrganizationService) Update(id uuid.UUID, req *UpdateOrganizationRequest) (*OrganizationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	org, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.Description != nil {
		org.Description = *req.Description
	}
	if req.Industry != nil {
		org.Industry = *req.Industry
	}
	if req.CompanySize != nil {
		org.CompanySize = *req.CompanySize
	}
	if req.Website != nil {
		org.Website = *req.Website
	}

	if err := s.repo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return s.toResponse(org), nil
}

// Delete deletes an organization
func (s *OrganizationService) Delete(id uuid.UUID) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to get organization: %w", err)
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	return nil
}

func (s *OrganizationService) toResponse(org *models.Organization) *OrganizationResponse {
	resp := &OrganizationResponse{
		ID:          org.ID,
		Name:        org.Name,
		Description: org.Description,
		OwnerID:     org.OwnerID,
		Industry:    org.Industry,
		CompanySize: org.CompanySize,
		Website:     org.Website,
		CreatedAt:   org.CreatedAt,
	}
	if org.Owner != nil {
		resp.OwnerName = org.Owner.Name
	}
	return resp
}
