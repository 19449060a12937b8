package main

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dashboard-backend/internal/config"
	"dashboard-backend/internal/database"
	"dashboard-backend/internal/database/models"
	"dashboard-backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Simple structures that directly match DB schema
type UserData struct {
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	AvatarURL string `yaml:"avatar_url,omitempty"`
}

type OrganizationData struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	OwnerEmail  string `yaml:"owner_email"`
	Industry    string `yaml:"industry,omitempty"`
	CompanySize string `yaml:"company_size,omitempty"`
}

type TeamData struct {
	Name             string   `yaml:"name"`
	OrganizationName string   `yaml:"organization_name"`
	Description      string   `yaml:"description,omitempty"`
	CreatedByEmail   string   `yaml:"created_by_email"`
	Permissions      []string `yaml:"permissions,omitempty"`
}

type MembershipData struct {
	TeamName     string `yaml:"team_name"`
	UserEmail    string `yaml:"user_email"`
	Role         string `yaml:"role"`
	AddedByEmail string `yaml:"added_by_email"`
}

// File structures
type UsersFile struct {
	Users []UserData `yaml:"users"`
}

type OrganizationsFile struct {
	Organizations []OrganizationData `yaml:"organizations"`
}

type TeamsFile struct {
	Teams []TeamData `yaml:"teams"`
}

type MembershipsFile struct {
	Memberships []MembershipData `yaml:"memberships"`
}

func main() {
	log.Println("🚀 Loading initial data from YAML files...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database with retry (for dockerized Postgres startup)
	db, err := connectWithRetry(cfg.DatabaseURL, 60, time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Load data from YAML files
	if err := loadDataFromYAMLFiles(db, "scripts/data"); err != nil {
		log.Fatalf("Failed to load data from YAML files: %v", err)
	}

	log.Println("✅ Initial data loaded successfully!")
}

// connectWithRetry attempts to initialize the DB with retries to wait for Postgres readiness.
func connectWithRetry(dsn string, maxAttempts int, delay time.Duration) (*gorm.DB, error) {
	// Suppress verbose GORM logging during data loading
	opts := &database.Options{
		LogLevel:    logger.Silent,
		AutoMigrate: true,
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err := database.Initialize(dsn, opts)
		if err == nil {
			return db, nil
		}
		if attempt%10 == 0 || attempt == maxAttempts {
			log.Printf("Database not ready (%d/%d): %v", attempt, maxAttempts, err)
		}
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("database not ready after %d attempts", maxAttempts)
}

func loadDataFromYAMLFiles(db *gorm.DB, dataDir string) error {
	users, err := loadUsers(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	organizations, err := loadOrganizations(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load organizations: %w", err)
	}

	teams, err := loadTeams(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load teams: %w", err)
	}

	memberships, err := loadMemberships(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load memberships: %w", err)
	}

	// Create users first; everything else references them
	userMap := make(map[string]*models.User)
	userCreated := 0
	for _, userData := range users {
		user, created, err := createUser(db, userData)
		if err != nil {
			return fmt.Errorf("failed to create user %s: %w", userData.Email, err)
		}
		userMap[strings.ToLower(userData.Email)] = user
		if created {
			userCreated++
		}
	}
	log.Printf("📋 Users: %d created, %d total", userCreated, len(users))

	// Create organizations
	orgMap := make(map[string]*models.Organization)
	orgCreated := 0
	for _, orgData := range organizations {
		org, created, err := createOrganization(db, orgData, userMap)
		if err != nil {
			return fmt.Errorf("failed to create organization %s: %w", orgData.Name, err)
		}
		orgMap[orgData.Name] = org
		if created {
			orgCreated++
		}
	}
	log.Printf("📋 Organizations: %d created, %d total", orgCreated, len(organizations))

	// Create teams
	teamMap := make(map[string]*models.Team)
	teamCreated := 0
	for _, teamData := range teams {
		team, created, err := createTeam(db, teamData, orgMap, userMap)
		if err != nil {
			return fmt.Errorf("failed to create team %s: %w", teamData.Name, err)
		}
		teamMap[teamData.Name] = team
		if created {
			teamCreated++
		}
	}
	log.Printf("📋 Teams: %d created, %d total", teamCreated, len(teams))

	// Create memberships last; AddMember keeps members_count in step
	membershipCreated := 0
	for _, membershipData := range memberships {
		created, err := createMembership(db, membershipData, teamMap, userMap)
		if err != nil {
			log.Printf("⚠️  Warning: failed to create membership %s/%s: %v",
				membershipData.TeamName, membershipData.UserEmail, err)
			continue
		}
		if created {
			membershipCreated++
		}
	}
	log.Printf("📋 Memberships: %d created, %d total", membershipCreated, len(memberships))

	return nil
}

func loadUsers(dataDir string) ([]UserData, error) {
	var allUsers []UserData

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".yaml") && strings.Contains(path, "users") {
			var file UsersFile
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			if err := yaml.Unmarshal(data, &file); err != nil {
				return err
			}

			allUsers = append(allUsers, file.Users...)
		}
		return nil
	})

	return allUsers, err
}

func loadOrganizations(dataDir string) ([]OrganizationData, error) {
	var allOrgs []OrganizationData

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".yaml") && strings.Contains(path, "organizations") {
			var file OrganizationsFile
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			if err := yaml.Unmarshal(data, &file); err != nil {
				return err
			}

			allOrgs = append(allOrgs, file.Organizations...)
		}
		return nil
	})

	return allOrgs, err
}

func loadTeams(dataDir string) ([]TeamData, error) {
	var allTeams []TeamData

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".yaml") && strings.Contains(path, "teams") {
			var file TeamsFile
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			if err := yaml.Unmarshal(data, &file); err != nil {
				return err
			}

			allTeams = append(allTeams, file.Teams...)
		}
		return nil
	})

	return allTeams, err
}

func loadMemberships(dataDir string) ([]MembershipData, error) {
	var allMemberships []MembershipData

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".yaml") && strings.Contains(path, "memberships") {
			var file MembershipsFile
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			if err := yaml.Unmarshal(data, &file); err != nil {
				return err
			}

			allMemberships = append(allMemberships, file.Memberships...)
		}
		return nil
	})

	return allMemberships, err
}

func createUser(db *gorm.DB, userData UserData) (*models.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(userData.Email))

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			hash, err := bcrypt.GenerateFromPassword([]byte(userData.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, false, fmt.Errorf("failed to hash password: %w", err)
			}

			user = models.User{
				Name:         userData.Name,
				Email:        email,
				PasswordHash: string(hash),
				AvatarURL:    userData.AvatarURL,
			}

			if err := db.Create(&user).Error; err != nil {
				return nil, false, fmt.Errorf("failed to create user: %w", err)
			}
			return &user, true, nil // created = true
		}
		return nil, false, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, false, nil // created = false (existing)
}

func createOrganization(db *gorm.DB, orgData OrganizationData, userMap map[string]*models.User) (*models.Organization, bool, error) {
	owner := userMap[strings.ToLower(orgData.OwnerEmail)]
	if owner == nil {
		return nil, false, fmt.Errorf("owner %s not found for organization %s", orgData.OwnerEmail, orgData.Name)
	}

	var org models.Organization
	if err := db.Where("name = ? AND owner_id = ?", orgData.Name, owner.ID).First(&org).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			org = models.Organization{
				Name:        orgData.Name,
				Description: orgData.Description,
				OwnerID:     owner.ID,
				Industry:    orgData.Industry,
				CompanySize: orgData.CompanySize,
			}

			if err := db.Create(&org).Error; err != nil {
				return nil, false, fmt.Errorf("failed to create organization: %w", err)
			}
			return &org, true, nil // created = true
		}
		return nil, false, fmt.Errorf("failed to query organization: %w", err)
	}

	return &org, false, nil // created = false (existing)
}

func createTeam(db *gorm.DB, teamData TeamData, orgMap map[string]*models.Organization, userMap map[string]*models.User) (*models.Team, bool, error) {
	org := orgMap[teamData.OrganizationName]
	if org == nil {
		return nil, false, fmt.Errorf("organization %s not found for team %s", teamData.OrganizationName, teamData.Name)
	}

	creator := userMap[strings.ToLower(teamData.CreatedByEmail)]
	if creator == nil {
		return nil, false, fmt.Errorf("creator %s not found for team %s", teamData.CreatedByEmail, teamData.Name)
	}

	var team models.Team
	if err := db.Where("name = ? AND organization_id = ?", teamData.Name, org.ID).First(&team).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			team = models.Team{
				Name:           teamData.Name,
				Description:    teamData.Description,
				OrganizationID: org.ID,
				Permissions:    teamData.Permissions,
				CreatedByID:    creator.ID,
			}

			if err := db.Create(&team).Error; err != nil {
				return nil, false, fmt.Errorf("failed to create team: %w", err)
			}
			return &team, true, nil // created = true
		}
		return nil, false, fmt.Errorf("failed to query team: %w", err)
	}

	return &team, false, nil // created = false (existing)
}

func createMembership(db *gorm.DB, membershipData MembershipData, teamMap map[string]*models.Team, userMap map[string]*models.User) (bool, error) {
	team := teamMap[membershipData.TeamName]
	if team == nil {
		return false, fmt.Errorf("team %s not found", membershipData.TeamName)
	}

	user := userMap[strings.ToLower(membershipData.UserEmail)]
	if user == nil {
		return false, fmt.Errorf("user %s not found", membershipData.UserEmail)
	}

	addedBy := userMap[strings.ToLower(membershipData.AddedByEmail)]
	if addedBy == nil {
		addedBy = user
	}

	role := models.TeamRoleMember
	if membershipData.Role != "" {
		role = models.TeamRole(membershipData.Role)
	}
	if !role.IsValid() {
		return false, fmt.Errorf("invalid role %q", membershipData.Role)
	}

	teamRepo := repository.NewTeamRepository(db)
	err := teamRepo.AddMember(&models.TeamMember{
		TeamID:    team.ID,
		UserID:    user.ID,
		Role:      role,
		AddedByID: addedBy.ID,
	})
	if err != nil {
		if err == gorm.ErrDuplicatedKey {
			return false, nil // created = false (existing)
		}
		return false, err
	}
	return true, nil // created = true
}
