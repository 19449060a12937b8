package repository

import (
	"errors"
	"time"

	"dashboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamRepository handles database operations for teams and their member list.
// The member rows and the denormalized members_count column are always mutated
// inside the same transaction so the count never drifts from the row count.
type TeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create creates a new team
func (r *TeamRepository) Create(team *models.Team) error {
	return r.db.Create(team).Error
}

// GetByID retrieves a team by ID
func (r *TeamRepository) GetByID(id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := r.db.First(&team, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetWithMembers retrieves a team with its member list and display relations
func (r *TeamRepository) GetWithMembers(id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := r.db.Preload("Organization").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("team_members.added_at ASC")
		}).
		Preload("Members.User").
		Preload("Members.AddedBy").
		First(&team, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetByOrganizationID retrieves all teams for an organization with pagination, newest first
func (r *TeamRepository) GetByOrganizationID(orgID uuid.UUID, limit, offset int) ([]models.Team, int64, error) {
	var teams []models.Team
	var total int64

	if err := r.db.Model(&models.Team{}).Where("organization_id = ?", orgID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&teams).Error
	if err != nil {
		return nil, 0, err
	}

	return teams, total, nil
}

// GetByUserID retrieves all teams a user belongs to, newest first
func (r *TeamRepository) GetByUserID(userID uuid.UUID) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.created_at DESC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// Update updates a team
func (r *TeamRepository) Update(team *models.Team) error {
	return r.db.Save(team).Error
}

// Delete deletes a team and its member rows
func (r *TeamRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.TeamMember{}, "team_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, "id = ?", id).Error
	})
}

// GetMember retrieves a single membership row
func (r *TeamRepository) GetMember(teamID, userID uuid.UUID) (*models.TeamMember, error) {
	var member models.TeamMember
	err := r.db.First(&member, "team_id = ? AND user_id = ?", teamID, userID).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// AddMember appends a membership and increments members_count atomically.
// A second membership for the same (team, user) pair is rejected; the unique
// index backs the in-transaction check.
func (r *TeamRepository) AddMember(member *models.TeamMember) error {
	if member.AddedAt.IsZero() {
		member.AddedAt = time.Now()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.TeamMember
		err := tx.First(&existing, "team_id = ? AND user_id = ?", member.TeamID, member.UserID).Error
		if err == nil {
			return gorm.ErrDuplicatedKey
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(member).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Team{}).Where("id = ?", member.TeamID).
			UpdateColumn("members_count", gorm.Expr("members_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// RemoveMember deletes the membership and decrements members_count by the
// number of rows actually removed, in the same transaction.
func (r *TeamRepository) RemoveMember(teamID, userID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.TeamMember{}, "team_id = ? AND user_id = ?", teamID, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Team{}).Where("id = ?", teamID).
			UpdateColumn("members_count", gorm.Expr("members_count - ?", res.RowsAffected)).Error
	})
}

// UpdateMemberRole updates the role of an existing membership in place
func (r *TeamRepository) UpdateMemberRole(teamID, userID uuid.UUID, role models.TeamRole) error {
	res := r.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddPermission adds a permission string to the team's permission set.
// Appending is guarded so the array keeps set semantics.
func (r *TeamRepository) AddPermission(teamID uuid.UUID, permission string) error {
	res := r.db.Exec(
		`UPDATE teams SET permissions = array_append(permissions, ?) WHERE id = ? AND NOT (? = ANY(coalesce(permissions, '{}')))`,
		permission, teamID, permission,
	)
	if res.Error != nil {
		return res.Error
	}
	return nil
}

// RemovePermission removes a permission string from the team's permission set
func (r *TeamRepository) RemovePermission(teamID uuid.UUID, permission string) error {
	return r.db.Exec(
		`UPDATE teams SET permissions = array_remove(permissions, ?) WHERE id = ?`,
		permission, teamID,
	).Error
}
