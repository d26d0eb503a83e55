package token

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mcontreras/contact-form-api/internal/config"
	"github.com/mcontreras/contact-form-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrTokenExpired and ErrTokenInvalid are distinct, user-visible kinds;
	// both map to 401 but carry different messages.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")

	ErrNoSigningSecret = errors.New("signing secret is not configured")
)

// Claims is the payload shared by access and refresh tokens.
type Claims struct {
	UserID uint        `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies signed tokens and owns the persisted
// refresh-token lifecycle. Access tokens are stateless and unrevocable;
// refresh tokens are the single revocable credential.
type Service struct {
	db            *gorm.DB
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:            db,
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessExpiry:  cfg.JWTAccessExpiry,
		refreshExpiry: cfg.JWTRefreshExpiry,
	}
}

func (s *Service) IssueAccessToken(user *models.User) (string, error) {
	return s.sign(user, s.accessSecret, s.accessExpiry)
}

func (s *Service) IssueRefreshToken(user *models.User) (string, error) {
	return s.sign(user, s.refreshSecret, s.refreshExpiry)
}

func (s *Service) sign(user *models.User, secret []byte, expiry time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSigningSecret
	}

	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti keeps tokens unique even when issued within the same second.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) VerifyAccessToken(tokenString string) (*Claims, error) {
	return verify(tokenString, s.accessSecret)
}

func (s *Service) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return verify(tokenString, s.refreshSecret)
}

func verify(tokenString string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// PersistRefreshToken stores a refresh-token record for a freshly issued
// token. The row's expiry is decoded from the token's own exp claim so the
// two can never disagree.
func (s *Service) PersistRefreshToken(tokenString string, userID uint) error {
	claims, err := s.VerifyRefreshToken(tokenString)
	if err != nil {
		return fmt.Errorf("failed to decode refresh token: %w", err)
	}

	record := models.RefreshToken{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// IsRefreshTokenValid is the authoritative revocation check. Cryptographic
// validity alone is not enough: a structurally valid token may have been
// revoked.
func (s *Service) IsRefreshTokenValid(tokenString string) (bool, error) {
	var count int64
	err := s.db.Model(&models.RefreshToken{}).
		Where("token = ? AND revoked = ? AND expires_at > ?", tokenString, false, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RevokeRefreshToken marks the matching record revoked. Revoking twice is not
// an error; the returned bool reports whether a row matched.
func (s *Service) RevokeRefreshToken(tokenString string) (bool, error) {
	result := s.db.Model(&models.RefreshToken{}).
		Where("token = ?", tokenString).
		Update("revoked", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RevokeAllForUser revokes every refresh token owned by the user. Used on
// logout-all, password change and account deactivation.
func (s *Service) RevokeAllForUser(userID uint) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error
}

// CleanupExpired permanently deletes expired or revoked rows. Maintenance
// only, never on the request hot path.
func (s *Service) CleanupExpired() (int64, error) {
	result := s.db.
		Where("expires_at < ? OR revoked = ?", time.Now(), true).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

// StartCleanup runs a daily sweep of expired and revoked refresh tokens.
func (s *Service) StartCleanup(done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := s.CleanupExpired()
				if err != nil {
					slog.Error("refresh token cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("refresh token cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}
