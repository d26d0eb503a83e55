package services

import (
	"errors"
	"fmt"

	"github.com/mcontreras/contact-form-api/internal/config"
	"github.com/mcontreras/contact-form-api/internal/dto"
	"github.com/mcontreras/contact-form-api/internal/models"
	"github.com/mcontreras/contact-form-api/internal/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidCredentials deliberately covers "no such user", "inactive"
	// and "wrong password" so a caller cannot tell which one failed.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrSelfToggle          = errors.New("cannot toggle your own status")
	ErrNothingToUpdate     = errors.New("no fields to update")
)

// AuthService composes the credential store and the token service into the
// session lifecycle operations.
type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *token.Service
}

func NewAuthService(db *gorm.DB, cfg *config.Config, tokens *token.Service) *AuthService {
	return &AuthService{db: db, cfg: cfg, tokens: tokens}
}

func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthData, error) {
	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.Role(req.Role)
	if !role.Valid() {
		role = models.RoleUser
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		// Losers of a concurrent insert race hit the unique index instead of
		// the lookup above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokenPair(&user)
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthData, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokenPair(&user)
}

// Refresh mints a new access token. The refresh token is not rotated. All
// failure modes collapse to ErrInvalidRefreshToken: bad signature, expired,
// revoked, user missing or inactive.
func (s *AuthService) Refresh(refreshToken string) (*dto.RefreshData, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	valid, err := s.tokens.IsRefreshTokenValid(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if !valid {
		return nil, ErrInvalidRefreshToken
	}

	var user models.User
	if err := s.db.First(&user, claims.UserID).Error; err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if !user.IsActive {
		return nil, ErrInvalidRefreshToken
	}

	accessToken, err := s.tokens.IssueAccessToken(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	return &dto.RefreshData{User: &user, AccessToken: accessToken}, nil
}

// Logout revokes exactly the presented refresh token. Idempotent.
func (s *AuthService) Logout(refreshToken string) error {
	_, err := s.tokens.RevokeRefreshToken(refreshToken)
	return err
}

// LogoutAll revokes every refresh token owned by the user.
func (s *AuthService) LogoutAll(userID uint) error {
	return s.tokens.RevokeAllForUser(userID)
}

func (s *AuthService) Profile(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(userID uint, req *dto.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		var existing models.User
		err := s.db.Where("email = ? AND id != ?", req.Email, userID).First(&existing).Error
		if err == nil {
			return nil, ErrEmailTaken
		}
		updates["email"] = req.Email
	}
	if len(updates) == 0 {
		return nil, ErrNothingToUpdate
	}

	result := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	return s.Profile(userID)
}

// ChangePassword verifies the current password, stores the new hash, then
// revokes all refresh tokens so every other session must log in again.
func (s *AuthService) ChangePassword(userID uint, req *dto.ChangePasswordRequest) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.Model(&user).Update("password", string(hash)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return s.tokens.RevokeAllForUser(userID)
}

func (s *AuthService) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ToggleStatus flips the target user's active flag. Deactivation revokes all
// of the user's refresh tokens so standing sessions are lost immediately,
// not just blocked at the next login.
func (s *AuthService) ToggleStatus(adminID, targetID uint) (*models.User, error) {
	if adminID == targetID {
		return nil, ErrSelfToggle
	}

	var user models.User
	if err := s.db.First(&user, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.IsActive = !user.IsActive
	if err := s.db.Model(&user).Update("is_active", user.IsActive).Error; err != nil {
		return nil, fmt.Errorf("failed to toggle user status: %w", err)
	}

	if !user.IsActive {
		if err := s.tokens.RevokeAllForUser(user.ID); err != nil {
			return nil, fmt.Errorf("failed to revoke tokens for deactivated user: %w", err)
		}
	}
	return &user, nil
}

func (s *AuthService) issueTokenPair(user *models.User) (*dto.AuthData, error) {
	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	if err := s.tokens.PersistRefreshToken(refreshToken, user.ID); err != nil {
		return nil, err
	}

	return &dto.AuthData{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
