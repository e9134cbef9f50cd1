// Package auth handles accounts and opaque bearer tokens.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"talkie/server/models"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrMissingFields      = errors.New("username, email and password are required")
)

// Service owns user and token rows.
type Service struct {
	db     *gorm.DB
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewService returns a Service issuing tokens valid for ttl. A zero ttl
// falls back to models.TokenTTL.
func NewService(db *gorm.DB, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = models.TokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, ttl: ttl, now: time.Now, logger: logger}
}

// Signup creates a user with a hashed password.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Username: username, Email: email, Password: hash}
	if err := db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Login checks credentials and issues a fresh token.
func (s *Service) Login(ctx context.Context, email, password string, permanent bool) (*models.Token, error) {
	db := s.db.WithContext(ctx)
	var u models.User
	if err := db.Where("email = ?", strings.TrimSpace(email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := VerifyPassword(u.Password, password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	value, err := NewTokenValue()
	if err != nil {
		return nil, err
	}
	tok := models.NewToken(u.ID, value, permanent, s.now(), s.ttl)
	if err := db.Create(&tok).Error; err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	s.logger.Info("user logged in", "user_id", u.ID, "permanent", permanent)
	return &tok, nil
}

// Authenticate resolves a bearer value to its user.
func (s *Service) Authenticate(ctx context.Context, value string) (*models.User, *models.Token, error) {
	if value == "" {
		return nil, nil, ErrInvalidToken
	}
	db := s.db.WithContext(ctx)
	var tok models.Token
	if err := db.Where("token = ?", value).First(&tok).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	if tok.Expired(s.now()) {
		return nil, nil, ErrTokenExpired
	}
	var u models.User
	if err := db.First(&u, tok.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	return &u, &tok, nil
}

// Logout deletes the presented token.
func (s *Service) Logout(ctx context.Context, value string) error {
	res := s.db.WithContext(ctx).Where("token = ?", value).Delete(&models.Token{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidToken
	}
	return nil
}

// PurgeExpired deletes every non-permanent token past its expiry.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("is_permanent = ? AND expiration_date IS NOT NULL AND expiration_date <= ?", false, s.now().UTC()).
		Delete(&models.Token{})
	return res.RowsAffected, res.Error
}

// NewTokenValue returns 40 hex characters from 20 random bytes.
func NewTokenValue() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read token bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
