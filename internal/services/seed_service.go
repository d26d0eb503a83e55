package services

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/mcontreras/contact-form-api/internal/config"
	"github.com/mcontreras/contact-form-api/internal/dto"
	"github.com/mcontreras/contact-form-api/internal/models"
	"github.com/mcontreras/contact-form-api/internal/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the plaintext password shared by all generated users.
const SeedPassword = "Password123"

// SeedService generates randomized demo rows for users, contact forms and
// refresh tokens. Admin-only maintenance tooling, never on the request path
// of regular traffic.
type SeedService struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *token.Service
}

func NewSeedService(db *gorm.DB, cfg *config.Config, tokens *token.Service) *SeedService {
	return &SeedService{db: db, cfg: cfg, tokens: tokens}
}

var seedFirstNames = []string{
	"Juan", "Maria", "Carlos", "Ana", "Luis", "Carmen", "Pedro", "Laura",
	"Miguel", "Isabel", "Jose", "Patricia", "Francisco", "Sofia", "Antonio",
	"Elena", "Manuel", "Cristina", "David", "Monica",
}

var seedLastNames = []string{
	"Garcia", "Lopez", "Martinez", "Gonzalez", "Perez", "Sanchez", "Ramirez",
	"Torres", "Flores", "Rivera", "Gomez", "Diaz", "Cruz", "Morales",
	"Ortiz", "Gutierrez", "Chavez", "Ramos", "Herrera", "Jimenez",
}

var seedPhones = []string{
	"+1234567890", "+9876543210", "+5555555555", "+1111111111", "+2222222222",
	"+3333333333", "+4444444444", "+6666666666", "+7777777777", "+8888888888",
}

var seedMessages = []string{
	"I am interested in your services. Could you contact me?",
	"I would like more information about the available products.",
	"I have a question about pricing and availability.",
	"I would like to schedule a meeting to discuss a proposal.",
	"I need technical support for a product I purchased.",
	"I would like information about warranties and return policies.",
	"I am looking for a custom solution for my company.",
	"I am interested in the available subscription plans.",
	"I have questions about the installation process.",
	"I would like to receive a detailed quote.",
	"Do you offer discounts for bulk purchases?",
	"I need information about training for my team.",
	"I would like to know more about the available integrations.",
	"I am having trouble with my account and need help.",
	"I would like to schedule a product demonstration.",
}

// Run ensures tables exist, optionally clears existing data, then generates
// users, contact forms and refresh tokens.
func (s *SeedService) Run(req *dto.SeedRequest) (*dto.SeedResult, error) {
	userCount := req.UserCount
	if userCount <= 0 {
		userCount = s.cfg.SeedUserCount
	}
	formCount := req.FormCount
	if formCount <= 0 {
		formCount = s.cfg.SeedFormCount
	}

	if err := s.EnsureTables(); err != nil {
		return nil, fmt.Errorf("failed to ensure tables: %w", err)
	}

	result := &dto.SeedResult{DataCleared: req.ClearData}

	if req.ClearData {
		if _, err := s.Clear(); err != nil {
			return nil, err
		}
	}

	users, err := s.generateUsers(userCount)
	if err != nil {
		return nil, err
	}
	result.UsersCreated = len(users)

	formsCreated, err := s.generateForms(formCount)
	if err != nil {
		return nil, err
	}
	result.FormsCreated = formsCreated

	tokensCreated, err := s.generateRefreshTokens(users)
	if err != nil {
		return nil, err
	}
	result.TokensCreated = tokensCreated

	slog.Info("seed run completed",
		"users", result.UsersCreated,
		"forms", result.FormsCreated,
		"tokens", result.TokensCreated,
		"cleared", result.DataCleared)
	return result, nil
}

// EnsureTables creates missing tables. Safe to call repeatedly.
func (s *SeedService) EnsureTables() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.ContactForm{},
	)
}

// Clear hard-deletes all seeded data: tokens first, then forms and users.
func (s *SeedService) Clear() (*dto.ClearResult, error) {
	result := &dto.ClearResult{}

	res := s.db.Where("id > 0").Delete(&models.RefreshToken{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to clear refresh tokens: %w", res.Error)
	}
	result.TokensDeleted = res.RowsAffected

	res = s.db.Where("id > 0").Delete(&models.ContactForm{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to clear contact forms: %w", res.Error)
	}
	result.FormsDeleted = res.RowsAffected

	res = s.db.Where("id > 0").Delete(&models.User{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to clear users: %w", res.Error)
	}
	result.UsersDeleted = res.RowsAffected

	return result, nil
}

// Status reports row counts per table plus user breakdowns by role and
// active flag.
func (s *SeedService) Status() (*dto.SeedStatus, error) {
	status := &dto.SeedStatus{
		Tables:        map[string]int64{},
		UsersByRole:   map[string]int64{},
		UsersByStatus: map[string]int64{},
	}

	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, err
	}
	status.Tables["users"] = count

	if err := s.db.Model(&models.ContactForm{}).Count(&count).Error; err != nil {
		return nil, err
	}
	status.Tables["contact_forms"] = count

	if err := s.db.Model(&models.RefreshToken{}).Where("revoked = ?", false).Count(&count).Error; err != nil {
		return nil, err
	}
	status.Tables["refresh_tokens"] = count

	for _, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
		if err := s.db.Model(&models.User{}).Where("role = ?", role).Count(&count).Error; err != nil {
			return nil, err
		}
		status.UsersByRole[string(role)] = count
	}

	if err := s.db.Model(&models.User{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
		return nil, err
	}
	status.UsersByStatus["active"] = count
	if err := s.db.Model(&models.User{}).Where("is_active = ?", false).Count(&count).Error; err != nil {
		return nil, err
	}
	status.UsersByStatus["inactive"] = count

	return status, nil
}

func (s *SeedService) generateUsers(count int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}
	password := string(hash)

	candidates := []models.User{
		{Name: "Admin Principal", Email: "admin@test.com", Password: password, Role: models.RoleAdmin, IsActive: true},
		{Name: "Demo User", Email: "user@test.com", Password: password, Role: models.RoleUser, IsActive: true},
		{Name: "Maria Garcia", Email: "maria.garcia@test.com", Password: password, Role: models.RoleUser, IsActive: true},
		{Name: "Carlos Lopez", Email: "carlos.lopez@test.com", Password: password, Role: models.RoleUser, IsActive: true},
		{Name: "Ana Martinez", Email: "ana.martinez@test.com", Password: password, Role: models.RoleAdmin, IsActive: true},
	}

	for i := len(candidates); i < count; i++ {
		first := seedFirstNames[rand.Intn(len(seedFirstNames))]
		last := seedLastNames[rand.Intn(len(seedLastNames))]
		role := models.RoleUser
		if rand.Float64() > 0.8 {
			role = models.RoleAdmin
		}
		candidates = append(candidates, models.User{
			Name:     first + " " + last,
			Email:    fmt.Sprintf("%s.%s%d@test.com", strings.ToLower(first), strings.ToLower(last), i),
			Password: password,
			Role:     role,
			IsActive: rand.Float64() > 0.1,
		})
	}

	created := make([]models.User, 0, len(candidates))
	for _, user := range candidates {
		user := user
		if err := s.db.Create(&user).Error; err != nil {
			// Duplicate emails from earlier runs are expected; skip them.
			slog.Warn("skipping seed user", "email", user.Email, "error", err)
			continue
		}
		created = append(created, user)
	}
	return created, nil
}

func (s *SeedService) generateForms(count int) (int, error) {
	formsCreated := 0
	for i := 0; i < count; i++ {
		first := seedFirstNames[rand.Intn(len(seedFirstNames))]
		last := seedLastNames[rand.Intn(len(seedLastNames))]

		form := models.ContactForm{
			FullName:  first + " " + last,
			Email:     fmt.Sprintf("%s.%s@email.com", strings.ToLower(first), strings.ToLower(last)),
			Phone:     seedPhones[rand.Intn(len(seedPhones))],
			Message:   seedMessages[rand.Intn(len(seedMessages))],
			CreatedAt: time.Now().AddDate(0, 0, -rand.Intn(30)),
		}
		if err := s.db.Create(&form).Error; err != nil {
			slog.Warn("skipping seed form", "error", err)
			continue
		}
		formsCreated++
	}
	return formsCreated, nil
}

// generateRefreshTokens issues and persists a refresh token for 60% of the
// active generated users, through the same path real logins use.
func (s *SeedService) generateRefreshTokens(users []models.User) (int, error) {
	active := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			active = append(active, u)
		}
	}

	withTokens := (len(active)*6 + 9) / 10
	tokensCreated := 0
	for i := 0; i < withTokens; i++ {
		user := active[i]
		refreshToken, err := s.tokens.IssueRefreshToken(&user)
		if err != nil {
			return tokensCreated, fmt.Errorf("failed to issue seed refresh token: %w", err)
		}
		if err := s.tokens.PersistRefreshToken(refreshToken, user.ID); err != nil {
			slog.Warn("skipping seed refresh token", "user_id", user.ID, "error", err)
			continue
		}
		tokensCreated++
	}
	return tokensCreated, nil
}
