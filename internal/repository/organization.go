package repository

import (
	"dashboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationRepository handles database operations for organizations
type OrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create creates a new organization
func (r *OrganizationRepository) Create(org *models.Organization) error {
	return r.db.Create(org).Error
}

// GetByID retrieves an organization by ID with its owner
func (r *OrganizationRepository) GetByID(id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := r.db.Preload("Owner").First(&org, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetWithTeams retrieves an organization with its teams
func (r *OrganizationRepository) GetWithTeams(id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := r.db.Preload("Owner").Preload("Teams").First(&org, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetByOwnerID retrieves all organizations owned by a user, newest first
func (r *OrganizationRepository) GetByOwnerID(ownerID uuid.UUID) ([]models.Organization, error) {
	var orgs []models.Organization
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// GetByUserID retrieves organizations the user owns or belongs to through a
// team membership, newest first.
func (r *OrganizationRepository) GetByUserID(userID uuid.UUID) ([]models.Organization, error) {
	var orgs []models.Organization
	memberOrgIDs := r.db.Model(&models.Team{}).
		Select("teams.organization_id").
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID)

	err := r.db.Preload("Owner").
		Where("owner_id = ? OR id IN (?)", userID, memberOrgIDs).
		Order("created_at DESC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// Update updates an organization
func (r *OrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

// Delete deletes an organization
func (r *OrganizationRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Organization{}, "id = ?", id).Error
}
