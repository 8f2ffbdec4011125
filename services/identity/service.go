package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/caingletaouievyv/tasktracker-api/config"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNameTaken         = errors.New("user name is already taken")
	ErrUserNameRequired      = errors.New("user name is required")
	ErrPasswordPolicy        = errors.New("password does not satisfy policy")
	ErrPasswordHashingFailed = errors.New("failed to hash password")
)

// LockoutService is consulted before and after every password check.
type LockoutService interface {
	IsLocked(ctx context.Context, userID string) (bool, error)
	RegisterFailure(ctx context.Context, userID string) error
	Reset(ctx context.Context, userID string) error
}

type Service struct {
	config  *config.Config
	db      *gorm.DB
	lockout LockoutService
	logger  *logging.Service

	// compared against when the user name is unknown so both paths cost one bcrypt check
	dummyHash []byte
}

func NewService(cfg *config.Config, db *gorm.DB, lockout LockoutService, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}

	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("tasktracker-unknown-user"), cfg.Auth.BcryptCost)

	return &Service{
		config:    cfg,
		db:        db,
		lockout:   lockout,
		logger:    logger,
		dummyHash: dummyHash,
	}
}

func (s *Service) ValidatePassword(password string) error {
	if len(password) < s.config.Auth.MinLength {
		s.logger.Debug("password validation failed: insufficient length",
			zap.Int("length", len(password)),
			zap.Int("min_required", s.config.Auth.MinLength))
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordPolicy, s.config.Auth.MinLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	var missing []string
	if s.config.Auth.RequireUpper && !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if s.config.Auth.RequireLower && !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if s.config.Auth.RequireNumber && !hasNumber {
		missing = append(missing, "one number")
	}
	if s.config.Auth.RequireSpecial && !hasSpecial {
		missing = append(missing, "one special character")
	}

	if len(missing) > 0 {
		s.logger.Debug("password validation failed: missing requirements",
			zap.Strings("missing_requirements", missing))
		return fmt.Errorf("%w: must contain at least %s", ErrPasswordPolicy, strings.Join(missing, ", "))
	}

	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrPasswordHashingFailed, err)
	}

	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Register creates a user holding the User role.
func (s *Service) Register(ctx context.Context, userName, email, password string) (*User, error) {
	return s.createUser(ctx, userName, email, password, RoleUser)
}

func (s *Service) createUser(ctx context.Context, userName, email, password string, roles ...string) (*User, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, ErrUserNameRequired
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		UserName:     userName,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
	}
	for _, role := range roles {
		user.Roles = append(user.Roles, UserRole{Name: role})
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Info("registration rejected: user name taken", zap.String("user_name", userName))
			return nil, ErrUserNameTaken
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("user_name", user.UserName),
		zap.Strings("roles", roles))

	return user, nil
}

// VerifyCredentials returns ErrInvalidCredentials for an unknown user name,
// a wrong password and a locked-out account alike.
func (s *Service) VerifyCredentials(ctx context.Context, identifier, secret string) (*Principal, error) {
	user, err := s.findUser(ctx, "user_name = ?", strings.TrimSpace(identifier))
	if errors.Is(err, ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(secret))
		s.logger.Warn("credential check failed: unknown user name")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	locked, err := s.lockoutCheck(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if locked {
		s.logger.Warn("credential check failed: account locked", zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	if err := s.VerifyPassword(user.PasswordHash, secret); err != nil {
		s.logger.Warn("credential check failed: wrong password", zap.String("user_id", user.ID))
		if s.lockout != nil {
			if err := s.lockout.RegisterFailure(ctx, user.ID); err != nil {
				return nil, fmt.Errorf("failed to record login failure: %w", err)
			}
		}
		return nil, ErrInvalidCredentials
	}

	if s.lockout != nil {
		if err := s.lockout.Reset(ctx, user.ID); err != nil {
			s.logger.Warn("failed to reset lockout counter", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return user.Principal(), nil
}

func (s *Service) lockoutCheck(ctx context.Context, userID string) (bool, error) {
	if s.lockout == nil {
		return false, nil
	}
	locked, err := s.lockout.IsLocked(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check lockout: %w", err)
	}
	return locked, nil
}

func (s *Service) FindPrincipal(ctx context.Context, userID string) (*Principal, error) {
	user, err := s.findUser(ctx, "id = ?", userID)
	if err != nil {
		return nil, err
	}
	return user.Principal(), nil
}

func (s *Service) FindByUserName(ctx context.Context, userName string) (*User, error) {
	return s.findUser(ctx, "user_name = ?", userName)
}

func (s *Service) findUser(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Preload("Roles").Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.logger.Error("failed to load user", zap.Error(err))
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// SeedAdmin creates the configured administrator when it does not exist yet.
func (s *Service) SeedAdmin(ctx context.Context, admin config.AdminConfig) error {
	if !admin.Configured() {
		s.logger.Debug("admin seeding skipped: not configured")
		return nil
	}

	_, err := s.FindByUserName(ctx, admin.UserName)
	if err == nil {
		s.logger.Debug("admin user already present", zap.String("user_name", admin.UserName))
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	if _, err := s.createUser(ctx, admin.UserName, admin.Email, admin.Password, RoleAdmin); err != nil {
		if errors.Is(err, ErrUserNameTaken) {
			return nil
		}
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	return nil
}
