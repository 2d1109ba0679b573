// Package client manages recorder client registration and token exchange.
// Recorder machines register once, receive a secret, and trade it for JWT
// access/refresh token pairs used on the capture API.
package client

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gui-replay/backend/internal/client/domain"
	"gui-replay/backend/internal/client/repository"
	"gui-replay/backend/internal/security"
)

var (
	// ErrInvalidCredentials is returned for a bad client ID or secret.
	ErrInvalidCredentials = errors.New("invalid client credentials")
	// ErrClientRevoked is returned when a revoked client attempts to authenticate.
	ErrClientRevoked = errors.New("client revoked")
	// ErrClientNotFound is returned when the referenced client does not exist.
	ErrClientNotFound = errors.New("client not found")
)

// TokenPair is the result of a successful token exchange.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Service implements client registration and the token lifecycle.
type Service struct {
	repo   repository.Repository
	tokens *security.TokenProvider
	hasher *security.Hasher
}

func NewService(repo repository.Repository, tokens *security.TokenProvider, hasher *security.Hasher) *Service {
	return &Service{repo: repo, tokens: tokens, hasher: hasher}
}

// Register creates a recorder client and returns it together with the
// plaintext secret. The secret is shown exactly once; only its bcrypt hash
// is stored.
func (s *Service) Register(ctx context.Context, name, hostname string) (*domain.Client, string, error) {
	if name == "" {
		return nil, "", fmt.Errorf("client name required")
	}
	secret, err := generateSecret()
	if err != nil {
		return nil, "", fmt.Errorf("generate secret: %w", err)
	}
	hash, err := s.hasher.Hash([]byte(secret))
	if err != nil {
		return nil, "", fmt.Errorf("hash secret: %w", err)
	}
	c := &domain.Client{
		ID:         uuid.NewString(),
		Name:       name,
		Hostname:   hostname,
		SecretHash: hash,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, "", fmt.Errorf("create client: %w", err)
	}
	return c, secret, nil
}

// Authenticate exchanges a client ID and secret for a token pair. The new
// refresh token's jti replaces any previously stored one, invalidating older
// refresh tokens.
func (s *Service) Authenticate(ctx context.Context, clientID, secret string) (*TokenPair, error) {
	c, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if c == nil {
		return nil, ErrInvalidCredentials
	}
	if c.IsRevoked() {
		return nil, ErrClientRevoked
	}
	if err := s.hasher.Compare(c.SecretHash, []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issuePair(ctx, c)
}

// Refresh rotates a refresh token. The presented token must match the jti
// stored on the client; on success a new pair is issued and the old refresh
// token stops working.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	clientID, jti, _, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	c, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if c == nil {
		return nil, ErrInvalidCredentials
	}
	if c.IsRevoked() {
		return nil, ErrClientRevoked
	}
	if !security.RefreshTokenHashEqual(jti, c.RefreshJTI) {
		return nil, ErrInvalidCredentials
	}
	return s.issuePair(ctx, c)
}

// Revoke disables the client. Existing tokens expire naturally; refresh stops
// immediately.
func (s *Service) Revoke(ctx context.Context, clientID string) error {
	c, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return fmt.Errorf("get client: %w", err)
	}
	if c == nil {
		return ErrClientNotFound
	}
	return s.repo.Revoke(ctx, clientID)
}

// Get returns the client or ErrClientNotFound.
func (s *Service) Get(ctx context.Context, clientID string) (*domain.Client, error) {
	c, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if c == nil {
		return nil, ErrClientNotFound
	}
	return c, nil
}

// List returns all registered clients.
func (s *Service) List(ctx context.Context) ([]*domain.Client, error) {
	return s.repo.List(ctx)
}

func (s *Service) issuePair(ctx context.Context, c *domain.Client) (*TokenPair, error) {
	access, _, accessExp, err := s.tokens.IssueAccess(c.ID, c.Hostname)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, jti, refreshExp, err := s.tokens.IssueRefresh(c.ID, c.Hostname)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.repo.UpdateRefreshJTI(ctx, c.ID, security.HashRefreshToken(jti)); err != nil {
		return nil, fmt.Errorf("store refresh jti: %w", err)
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
