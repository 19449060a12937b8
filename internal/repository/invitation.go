package repository

import (
	"time"

	"dashboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvitationRepository handles database operations for invitations. Status
// transitions are compare-and-swap updates filtered on the pending status, so
// exactly one caller wins a race between concurrent accept/reject/expiry.
type InvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create creates a new invitation
func (r *InvitationRepository) Create(invitation *models.Invitation) error {
	return r.db.Create(invitation).Error
}

// GetByToken retrieves an invitation by its token with display relations
// preloaded. Read-only; does not touch status or expiry.
func (r *InvitationRepository) GetByToken(token string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := r.db.Preload("Team").
		Preload("Organization").
		Preload("InvitedBy").
		First(&invitation, "token = ?", token).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// GetPendingByEmail retrieves all pending invitations for an address, newest first
func (r *InvitationRepository) GetPendingByEmail(email string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := r.db.Preload("Team").
		Preload("Organization").
		Preload("InvitedBy").
		Where("email = ? AND status = ?", email, models.InvitationStatusPending).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

// GetByTeamID retrieves all invitations ever issued for a team, newest first, any status
func (r *InvitationRepository) GetByTeamID(teamID uuid.UUID) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := r.db.Preload("InvitedBy").
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

// Transition moves a pending invitation into a terminal state. The update is
// filtered on status = pending, so a lost race or an already-resolved token
// surfaces as ErrRecordNotFound.
func (r *InvitationRepository) Transition(token string, to models.InvitationStatus) (*models.Invitation, error) {
	res := r.db.Model(&models.Invitation{}).
		Where("token = ? AND status = ?", token, models.InvitationStatusPending).
		Update("status", to)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByToken(token)
}

// MarkExpired lazily expires a single pending invitation. Guarded on the
// pending status so it is a no-op when a concurrent transition already won.
func (r *InvitationRepository) MarkExpired(id uuid.UUID) error {
	return r.db.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, models.InvitationStatusPending).
		Update("status", models.InvitationStatusExpired).Error
}

// ExpireOld bulk-transitions all pending invitations past their expiry.
// Idempotent; uses the same guarded filter as the lazy path.
func (r *InvitationRepository) ExpireOld() (int64, error) {
	res := r.db.Model(&models.Invitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationStatusPending, time.Now()).
		Update("status", models.InvitationStatusExpired)
	return res.RowsAffected, res.Error
}

// Delete deletes an invitation
func (r *InvitationRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Invitation{}, "id = ?", id).Error
}
