package lockout

import (
	"context"

	"github.com/caingletaouievyv/tasktracker-api/config"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"go.uber.org/zap"
)

// Service locks a principal out of password login after too many
// consecutive failures. A disabled service never locks anyone.
type Service struct {
	config *config.AuthConfig
	store  Store
	logger *logging.Service
}

func NewService(cfg *config.AuthConfig, store Store, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		store:  store,
		logger: logger,
	}
}

func (s *Service) enabled() bool {
	return s != nil && s.config.LockoutEnabled && s.store != nil
}

func (s *Service) IsLocked(ctx context.Context, userID string) (bool, error) {
	if !s.enabled() {
		return false, nil
	}

	count, err := s.store.Count(ctx, userID)
	if err != nil {
		return false, err
	}

	return count >= s.config.LockoutMaxAttempts, nil
}

func (s *Service) RegisterFailure(ctx context.Context, userID string) error {
	if !s.enabled() {
		return nil
	}

	count, err := s.store.Increment(ctx, userID, s.config.LockoutDuration)
	if err != nil {
		return err
	}

	if count == s.config.LockoutMaxAttempts {
		s.logger.Warn("user locked out after repeated login failures",
			zap.String("user_id", userID),
			zap.Int("attempts", count),
			zap.Duration("duration", s.config.LockoutDuration))
	}

	return nil
}

func (s *Service) Reset(ctx context.Context, userID string) error {
	if !s.enabled() {
		return nil
	}
	return s.store.Reset(ctx, userID)
}
