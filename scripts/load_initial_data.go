package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"orghub-backend/internal/auth"
	"orghub-backend/internal/config"
	"orghub-backend/internal/database"
	"orghub-backend/internal/database/models"
	"orghub-backend/internal/rbac"
	"orghub-backend/internal/repository"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Simple structures that directly match DB schema
type UserData struct {
	Email      string `yaml:"email"`
	FirstName  string `yaml:"first_name"`
	LastName   string `yaml:"last_name"`
	GlobalRole string `yaml:"global_role,omitempty"`
}

type OrganizationData struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Domain      string `yaml:"domain"`
	Description string `yaml:"description"`
	OwnerEmail  string `yaml:"owner_email"`
}

type MembershipData struct {
	Email            string `yaml:"email"`
	OrganizationName string `yaml:"organization_name"`
	Role             string `yaml:"role"`
}

type ProjectData struct {
	Name             string `yaml:"name"`
	OrganizationName string `yaml:"organization_name"`
	DisplayName      string `yaml:"display_name"`
	Description      string `yaml:"description"`
	Status           string `yaml:"status"`
	OwnerEmail       string `yaml:"owner_email,omitempty"`
}

// SeedFile is one YAML document; any section may be omitted
type SeedFile struct {
	Users         []UserData         `yaml:"users"`
	Organizations []OrganizationData `yaml:"organizations"`
	Memberships   []MembershipData   `yaml:"memberships"`
	Projects      []ProjectData      `yaml:"projects"`
}

type repositories struct {
	users       *repository.UserRepository
	orgs        *repository.OrganizationRepository
	memberships *repository.MembershipRepository
	projects    *repository.ProjectRepository
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
	defer database.Close(db)

	seed, err := loadSeedFiles("scripts/data")
	if err != nil {
		log.Fatalf("Failed to read YAML files: %v", err)
	}

	repos := repositories{
		users:       repository.NewUserRepository(db),
		orgs:        repository.NewOrganizationRepository(db),
		memberships: repository.NewMembershipRepository(db),
		projects:    repository.NewProjectRepository(db),
	}

	userMap, err := loadData(repos, seed)
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	if os.Getenv("PRINT_DEV_TOKENS") == "true" {
		printDevTokens(cfg, userMap)
	}

	log.Println("✅ Initial data loaded successfully!")
}

// connectWithRetry attempts to initialize the DB with retries to wait for Postgres readiness.
func connectWithRetry(dsn string, maxAttempts int, delay time.Duration) (*gorm.DB, error) {
	// Suppress GORM logs including SQL queries and "record not found"
	opts := &database.Options{
		LogLevel:    logger.Silent,
		AutoMigrate: true,
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err := database.Initialize(dsn, opts)
		if err == nil {
			return db, nil
		}
		// Only log every 10 attempts to reduce noise
		if attempt%10 == 0 || attempt == maxAttempts {
			log.Printf("Database not ready (%d/%d): %v", attempt, maxAttempts, err)
		}
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("database not ready after %d attempts", maxAttempts)
}

// loadSeedFiles merges every *.yaml file under dataDir
func loadSeedFiles(dataDir string) (*SeedFile, error) {
	var merged SeedFile

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var file SeedFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		merged.Users = append(merged.Users, file.Users...)
		merged.Organizations = append(merged.Organizations, file.Organizations...)
		merged.Memberships = append(merged.Memberships, file.Memberships...)
		merged.Projects = append(merged.Projects, file.Projects...)
		return nil
	})

	return &merged, err
}

func loadData(repos repositories, seed *SeedFile) (map[string]*models.User, error) {
	// Users first; everything else references them by email
	userMap := make(map[string]*models.User)
	userCreated := 0
	for _, userData := range seed.Users {
		user, created, err := createUser(repos, userData)
		if err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.Email, err)
		}
		userMap[user.Email] = user
		if created {
			userCreated++
		}
	}
	log.Printf("📋 Users: %d created, %d total", userCreated, len(seed.Users))

	orgMap := make(map[string]*models.Organization)
	orgCreated := 0
	for _, orgData := range seed.Organizations {
		org, created, err := createOrganization(repos, orgData, userMap)
		if err != nil {
			return nil, fmt.Errorf("failed to create organization %s: %w", orgData.Name, err)
		}
		orgMap[orgData.Name] = org
		if created {
			orgCreated++
		}
	}
	log.Printf("📋 Organizations: %d created, %d total", orgCreated, len(seed.Organizations))

	membershipCreated := 0
	for _, membershipData := range seed.Memberships {
		created, err := createMembership(repos, membershipData, userMap, orgMap)
		if err != nil {
			return nil, fmt.Errorf("failed to create membership %s/%s: %w", membershipData.OrganizationName, membershipData.Email, err)
		}
		if created {
			membershipCreated++
		}
	}
	log.Printf("📋 Memberships: %d created, %d total", membershipCreated, len(seed.Memberships))

	projectCreated := 0
	for _, projectData := range seed.Projects {
		created, err := createProject(repos, projectData, userMap, orgMap)
		if err != nil {
			log.Printf("⚠️  Warning: failed to create project %s: %v", projectData.Name, err)
			continue // Continue with other projects
		}
		if created {
			projectCreated++
		}
	}
	log.Printf("📋 Projects: %d created, %d total", projectCreated, len(seed.Projects))

	return userMap, nil
}

func createUser(repos repositories, userData UserData) (*models.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(userData.Email))
	user, err := repos.users.GetByEmail(email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to query user: %w", err)
	}

	globalRole := rbac.GlobalRoleUser
	if userData.GlobalRole != "" {
		globalRole, err = rbac.ParseGlobalRole(userData.GlobalRole)
		if err != nil {
			return nil, false, err
		}
	}

	user = &models.User{
		Email:      email,
		FirstName:  userData.FirstName,
		LastName:   userData.LastName,
		GlobalRole: globalRole,
	}
	if err := repos.users.Create(user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func createOrganization(repos repositories, orgData OrganizationData, userMap map[string]*models.User) (*models.Organization, bool, error) {
	org, err := repos.orgs.GetByName(orgData.Name)
	if err == nil {
		return org, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to query organization: %w", err)
	}

	// Organizations always start with an owner
	owner := userMap[strings.ToLower(orgData.OwnerEmail)]
	if owner == nil {
		return nil, false, fmt.Errorf("owner %s not found", orgData.OwnerEmail)
	}

	org = &models.Organization{
		Name:        orgData.Name,
		DisplayName: orgData.DisplayName,
		Domain:      orgData.Domain,
		Description: orgData.Description,
		Settings:    []byte(`{}`),
	}
	if err := repos.orgs.CreateWithOwner(org, owner.ID, time.Now()); err != nil {
		return nil, false, err
	}
	return org, true, nil
}

func createMembership(repos repositories, membershipData MembershipData, userMap map[string]*models.User, orgMap map[string]*models.Organization) (bool, error) {
	user := userMap[strings.ToLower(membershipData.Email)]
	if user == nil {
		return false, fmt.Errorf("user %s not found", membershipData.Email)
	}
	org := orgMap[membershipData.OrganizationName]
	if org == nil {
		return false, fmt.Errorf("organization %s not found", membershipData.OrganizationName)
	}
	role, err := rbac.ParseRole(membershipData.Role)
	if err != nil {
		return false, err
	}

	if _, err := repos.memberships.GetByUserAndOrganization(user.ID, org.ID); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to query membership: %w", err)
	}

	return true, repos.memberships.Create(&models.Membership{
		UserID:         user.ID,
		OrganizationID: org.ID,
		Role:           role,
		JoinedAt:       time.Now().UTC(),
	})
}

func createProject(repos repositories, projectData ProjectData, userMap map[string]*models.User, orgMap map[string]*models.Organization) (bool, error) {
	org := orgMap[projectData.OrganizationName]
	if org == nil {
		return false, fmt.Errorf("organization %s not found", projectData.OrganizationName)
	}

	if _, err := repos.projects.GetByName(org.ID, projectData.Name); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to query project: %w", err)
	}

	var ownerID *uuid.UUID
	if projectData.OwnerEmail != "" {
		owner := userMap[strings.ToLower(projectData.OwnerEmail)]
		if owner == nil {
			return false, fmt.Errorf("owner %s not found", projectData.OwnerEmail)
		}
		ownerID = &owner.ID
	}

	status := models.ProjectStatus(projectData.Status)
	if status == "" {
		status = models.ProjectStatusActive
	}

	return true, repos.projects.Create(&models.Project{
		OrganizationID: org.ID,
		Name:           projectData.Name,
		DisplayName:    projectData.DisplayName,
		Description:    projectData.Description,
		Status:         status,
		OwnerID:        ownerID,
	})
}

// printDevTokens prints a bearer token per seeded user for local testing
func printDevTokens(cfg *config.Config, userMap map[string]*models.User) {
	authConfig, err := auth.LoadAuthConfig("")
	if err != nil {
		authConfig = &auth.AuthConfig{
			JWTSecret: cfg.JWTSecret,
			Issuer:    "orghub-backend",
			Audience:  "orghub",
			TokenTTL:  24 * time.Hour,
		}
	}
	authService, err := auth.NewAuthService(authConfig)
	if err != nil {
		log.Printf("⚠️  Warning: cannot issue dev tokens: %v", err)
		return
	}

	for email, user := range userMap {
		token, err := authService.GenerateJWT(user.ID, email)
		if err != nil {
			log.Printf("⚠️  Warning: token for %s: %v", email, err)
			continue
		}
		log.Printf("🔑 %s: %s", email, token)
	}
}
