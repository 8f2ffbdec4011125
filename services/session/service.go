package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caingletaouievyv/tasktracker-api/services/identity"
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"github.com/caingletaouievyv/tasktracker-api/services/refreshtoken"
	"github.com/caingletaouievyv/tasktracker-api/services/token"
	"go.uber.org/zap"
)

// ErrAuthenticationFailed is the only authentication outcome callers see,
// whatever the underlying cause.
var ErrAuthenticationFailed = errors.New("authentication failed")

type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, identifier, secret string) (*identity.Principal, error)
	FindPrincipal(ctx context.Context, userID string) (*identity.Principal, error)
}

type TokenIssuer interface {
	IssueAccessToken(principal *identity.Principal) (*token.AccessToken, error)
	IssueRefreshToken() (string, error)
	RefreshExpiry() time.Duration
}

// CredentialTransport carries the refresh token between server and client
// outside of the response body.
type CredentialTransport interface {
	Deliver(value string, expiresAt time.Time)
	Read() (string, bool)
	Clear()
}

type Result struct {
	AccessToken string
	ExpiresAt   time.Time
	Principal   *identity.Principal
}

type Service struct {
	verifier CredentialVerifier
	issuer   TokenIssuer
	store    refreshtoken.Store
	logger   *logging.Service
	now      func() time.Time
}

func NewService(verifier CredentialVerifier, issuer TokenIssuer, store refreshtoken.Store, logger *logging.Service) *Service {
	return &Service{
		verifier: verifier,
		issuer:   issuer,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

type tokenPair struct {
	access           *token.AccessToken
	refresh          string
	refreshExpiresAt time.Time
}

func (s *Service) issuePair(principal *identity.Principal) (*tokenPair, error) {
	access, err := s.issuer.IssueAccessToken(principal)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := s.issuer.IssueRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &tokenPair{
		access:           access,
		refresh:          refresh,
		refreshExpiresAt: s.now().Add(s.issuer.RefreshExpiry()),
	}, nil
}

// Login verifies the credentials, supersedes every active refresh token of the
// principal with a new one and delivers it through transport.
func (s *Service) Login(ctx context.Context, identifier, secret string, client refreshtoken.ClientInfo, transport CredentialTransport) (*Result, error) {
	s.logger.Debug("login attempt", zap.String("ip", client.IPAddress))

	principal, err := s.verifier.VerifyCredentials(ctx, identifier, secret)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			s.logger.Warn("login rejected", zap.String("ip", client.IPAddress), zap.Error(err))
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}

	pair, err := s.issuePair(principal)
	if err != nil {
		return nil, err
	}

	var superseded int64
	err = s.store.WithinTransaction(ctx, func(tx refreshtoken.Store) error {
		var err error
		if superseded, err = tx.RevokeAllActive(ctx, principal.ID); err != nil {
			return err
		}
		_, err = tx.Create(ctx, principal.ID, pair.refresh, pair.refreshExpiresAt, client)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist login: %w", err)
	}

	transport.Deliver(pair.refresh, pair.refreshExpiresAt)

	s.logger.Info("login succeeded",
		zap.String("user_id", principal.ID),
		zap.Int64("superseded_tokens", superseded),
		zap.String("jti", pair.access.ID))

	return &Result{
		AccessToken: pair.access.Token,
		ExpiresAt:   pair.access.ExpiresAt,
		Principal:   principal,
	}, nil
}

// Refresh exchanges the presented refresh token for a new pair. The presented
// token is consumed: it is revoked in the same transaction that stores its
// successor, and a token that is no longer active leaves the store untouched.
func (s *Service) Refresh(ctx context.Context, client refreshtoken.ClientInfo, transport CredentialTransport) (*Result, error) {
	presented, ok := transport.Read()
	if !ok || presented == "" {
		s.logger.Warn("refresh rejected: no refresh token presented", zap.String("ip", client.IPAddress))
		return nil, ErrAuthenticationFailed
	}

	record, err := s.store.Lookup(ctx, presented)
	if errors.Is(err, refreshtoken.ErrRefreshTokenNotFound) {
		s.logger.Warn("refresh rejected: unknown refresh token", zap.String("ip", client.IPAddress))
		return nil, ErrAuthenticationFailed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if !record.IsActive(s.now()) {
		s.logger.Warn("refresh rejected: refresh token no longer active",
			zap.String("user_id", record.UserID),
			zap.Uint("token_id", record.ID),
			zap.Bool("revoked", record.Revoked),
			zap.Time("expires_at", record.ExpiresAt))
		return nil, ErrAuthenticationFailed
	}

	principal, err := s.verifier.FindPrincipal(ctx, record.UserID)
	if errors.Is(err, identity.ErrUserNotFound) {
		s.logger.Error("refresh token owner does not resolve",
			zap.String("user_id", record.UserID),
			zap.Uint("token_id", record.ID))
		if _, err := s.store.Revoke(ctx, record); err != nil {
			s.logger.Error("failed to revoke orphaned refresh token", zap.Uint("token_id", record.ID), zap.Error(err))
		}
		return nil, ErrAuthenticationFailed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve refresh token owner: %w", err)
	}

	pair, err := s.issuePair(principal)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTransaction(ctx, func(tx refreshtoken.Store) error {
		revoked, err := tx.Revoke(ctx, record)
		if err != nil {
			return err
		}
		if !revoked {
			return ErrAuthenticationFailed
		}
		_, err = tx.Create(ctx, principal.ID, pair.refresh, pair.refreshExpiresAt, client)
		return err
	})
	if errors.Is(err, ErrAuthenticationFailed) {
		s.logger.Warn("refresh rejected: refresh token consumed concurrently",
			zap.String("user_id", record.UserID),
			zap.Uint("token_id", record.ID))
		return nil, ErrAuthenticationFailed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	transport.Deliver(pair.refresh, pair.refreshExpiresAt)

	s.logger.Info("refresh token rotated",
		zap.String("user_id", principal.ID),
		zap.Uint("old_token_id", record.ID),
		zap.String("jti", pair.access.ID))

	return &Result{
		AccessToken: pair.access.Token,
		ExpiresAt:   pair.access.ExpiresAt,
		Principal:   principal,
	}, nil
}

// Logout revokes every active refresh token of the caller and clears the
// transport. Logging out with nothing active succeeds.
func (s *Service) Logout(ctx context.Context, userID string, transport CredentialTransport) error {
	transport.Clear()

	revoked, err := s.store.RevokeAllActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	s.logger.Info("logout", zap.String("user_id", userID), zap.Int64("revoked_tokens", revoked))

	return nil
}
