package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/content"
	"github.com/tripmate/backend/internal/database"
	"github.com/tripmate/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// SessionStore is implemented by database.Cache.
type SessionStore interface {
	CreateSession(ctx context.Context, userID uint, ttl time.Duration) (string, error)
	GetSession(ctx context.Context, sessionID string, ttl time.Duration) (uint, error)
	DeleteSession(ctx context.Context, sessionID string) error
	IncrementLoginAttempts(ctx context.Context, email string, window time.Duration) (int64, error)
	ResetLoginAttempts(ctx context.Context, email string) error
	LockAccount(ctx context.Context, email string, d time.Duration) error
	LockRemaining(ctx context.Context, email string) (time.Duration, error)
}

type AuthConfig struct {
	SessionTTL       time.Duration
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	BcryptCost       int
}

type AuthService struct {
	users     models.UserRepository
	sessions  SessionStore
	processor *content.Processor
	config    AuthConfig
	logger    *logrus.Logger
}

func NewAuthService(users models.UserRepository, sessions SessionStore, processor *content.Processor, config AuthConfig, logger *logrus.Logger) *AuthService {
	if config.MaxLoginAttempts <= 0 {
		config.MaxLoginAttempts = 5
	}
	if config.LockoutDuration <= 0 {
		config.LockoutDuration = 15 * time.Minute
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 24 * time.Hour
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		processor: processor,
		config:    config,
		logger:    logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a user account with a bcrypt password hash.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	nickname := s.processor.PlainText(req.Nickname)
	if nickname == "" {
		return nil, fmt.Errorf("nickname: %w", ErrInvalidInput)
	}

	if exists, err := s.users.ExistsByEmail(email); err != nil {
		return nil, translate(err, "check email")
	} else if exists {
		return nil, fmt.Errorf("email: %w", ErrDuplicate)
	}
	if exists, err := s.users.ExistsByNickname(nickname); err != nil {
		return nil, translate(err, "check nickname")
	} else if exists {
		return nil, fmt.Errorf("nickname: %w", ErrDuplicate)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Nickname:     nickname,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(user); err != nil {
		return nil, translate(err, "create user")
	}

	s.logger.WithField("user_id", user.ID).Info("User signed up")
	return user, nil
}

// Login verifies credentials and opens a session. Repeated failures lock the
// account for the configured lockout duration.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	email := normalizeEmail(req.Email)

	remaining, err := s.sessions.LockRemaining(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check lockout: %w", err)
	}
	if remaining > 0 {
		return nil, &LockedError{Remaining: remaining}
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		err = translate(err, "load user")
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, s.recordFailure(ctx, email)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.recordFailure(ctx, email)
	}

	if err := s.sessions.ResetLoginAttempts(ctx, email); err != nil {
		s.logger.WithError(err).Warn("Failed to reset login attempts")
	}

	sessionID, err := s.sessions.CreateSession(ctx, user.ID, s.config.SessionTTL)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(user.ID, now); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}
	user.LastLoginAt = &now

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return &models.LoginResponse{
		User:      user,
		SessionID: sessionID,
		ExpiresIn: int(s.config.SessionTTL.Seconds()),
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) error {
	attempts, err := s.sessions.IncrementLoginAttempts(ctx, email, s.config.LockoutDuration)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to record login attempt")
		return ErrInvalidCredentials
	}

	if attempts >= int64(s.config.MaxLoginAttempts) {
		if err := s.sessions.LockAccount(ctx, email, s.config.LockoutDuration); err != nil {
			s.logger.WithError(err).Error("Failed to lock account")
			return ErrInvalidCredentials
		}
		s.logger.WithFields(logrus.Fields{
			"email":    email,
			"attempts": attempts,
		}).Warn("Account locked after repeated login failures")
		return &LockedError{Remaining: s.config.LockoutDuration}
	}
	return ErrInvalidCredentials
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.DeleteSession(ctx, sessionID)
}

// Authenticate resolves a session to its user and extends the session.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*models.User, error) {
	userID, err := s.sessions.GetSession(ctx, sessionID, s.config.SessionTTL)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, translate(err, "load session user")
	}
	return user, nil
}
