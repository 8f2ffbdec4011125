package refreshtoken

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrDuplicateToken       = errors.New("refresh token already exists")
)

// Store is the persisted set of refresh token records.
type Store interface {
	Create(ctx context.Context, userID, token string, expiresAt time.Time, client ClientInfo) (*RefreshToken, error)
	Lookup(ctx context.Context, token string) (*RefreshToken, error)
	// Revoke flips the record to revoked only if it is still active. It
	// reports whether this call performed the transition.
	Revoke(ctx context.Context, record *RefreshToken) (bool, error)
	RevokeAllActive(ctx context.Context, userID string) (int64, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
	// WithinTransaction runs fn against a Store bound to one transaction.
	// Any error returned by fn rolls back every mutation made through it.
	WithinTransaction(ctx context.Context, fn func(Store) error) error
}

type GormStore struct {
	db     *gorm.DB
	logger *logging.Service
	now    func() time.Time
}

func NewGormStore(db *gorm.DB, logger *logging.Service) *GormStore {
	return &GormStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// stored and compared timestamps are always UTC
func (s *GormStore) utcNow() time.Time {
	return s.now().UTC()
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func (s *GormStore) Create(ctx context.Context, userID, token string, expiresAt time.Time, client ClientInfo) (*RefreshToken, error) {
	record := &RefreshToken{
		UserID:     userID,
		TokenHash:  hashToken(token),
		ExpiresAt:  expiresAt.UTC(),
		CreatedAt:  s.utcNow(),
		DeviceInfo: DescribeDevice(client.UserAgent),
		IPAddress:  client.IPAddress,
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Error("refresh token collision", zap.String("user_id", userID))
			return nil, ErrDuplicateToken
		}
		s.logger.Error("failed to store refresh token", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.logger.Info("refresh token stored",
		zap.String("user_id", userID),
		zap.Uint("token_id", record.ID),
		zap.Time("expires_at", expiresAt))

	return record, nil
}

func (s *GormStore) Lookup(ctx context.Context, token string) (*RefreshToken, error) {
	var record RefreshToken
	err := s.db.WithContext(ctx).Where("token_hash = ?", hashToken(token)).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRefreshTokenNotFound
	}
	if err != nil {
		s.logger.Error("refresh token lookup failed", zap.Error(err))
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return &record, nil
}

func (s *GormStore) Revoke(ctx context.Context, record *RefreshToken) (bool, error) {
	now := s.utcNow()
	result := s.db.WithContext(ctx).Model(&RefreshToken{}).
		Where("id = ? AND revoked = ? AND expires_at > ?", record.ID, false, now).
		Updates(map[string]any{"revoked": true, "revoked_at": now})
	if result.Error != nil {
		s.logger.Error("failed to revoke refresh token", zap.Uint("token_id", record.ID), zap.Error(result.Error))
		return false, fmt.Errorf("failed to revoke refresh token: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		s.logger.Debug("refresh token was no longer active", zap.Uint("token_id", record.ID))
		return false, nil
	}

	record.Revoked = true
	record.RevokedAt = &now

	s.logger.Info("refresh token revoked",
		zap.String("user_id", record.UserID),
		zap.Uint("token_id", record.ID))

	return true, nil
}

func (s *GormStore) RevokeAllActive(ctx context.Context, userID string) (int64, error) {
	now := s.utcNow()
	result := s.db.WithContext(ctx).Model(&RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Updates(map[string]any{"revoked": true, "revoked_at": now})
	if result.Error != nil {
		s.logger.Error("failed to revoke user refresh tokens", zap.String("user_id", userID), zap.Error(result.Error))
		return 0, fmt.Errorf("failed to revoke user refresh tokens: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.logger.Info("user refresh tokens revoked",
			zap.String("user_id", userID),
			zap.Int64("count", result.RowsAffected))
	}

	return result.RowsAffected, nil
}

// PurgeExpired physically deletes records whose expiry is before the cutoff.
func (s *GormStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at < ?", before.UTC()).Delete(&RefreshToken{})
	if result.Error != nil {
		s.logger.Error("failed to purge expired refresh tokens", zap.Error(result.Error))
		return 0, fmt.Errorf("failed to purge expired refresh tokens: %w", result.Error)
	}

	s.logger.Info("purged expired refresh tokens",
		zap.Time("before", before),
		zap.Int64("count", result.RowsAffected))

	return result.RowsAffected, nil
}

func (s *GormStore) WithinTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, logger: s.logger, now: s.now})
	})
}
