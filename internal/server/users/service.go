package users

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/hashing"
)

// RenewedToken is the result of a token renewal.
type RenewedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Service orchestrates registration, login, token renewal and listing.
// Every flow reports failures through the sentinel errors in
// internal/common so the transport layer can map them to statuses without
// leaking internal detail.
type Service struct {
	repo               Repository
	issuer             *auth.Issuer
	loginTokenValidity time.Duration
	renewTokenValidity time.Duration
}

func NewService(repo Repository, issuer *auth.Issuer, cfg *config.Config) *Service {
	return &Service{
		repo:               repo,
		issuer:             issuer,
		loginTokenValidity: cfg.LoginTokenValidityDuration,
		renewTokenValidity: cfg.RenewTokenValidityDuration,
	}
}

// anyFieldBlank reports whether any of the given fields is empty after
// trimming whitespace.
func anyFieldBlank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}

// Register validates the request fields, derives a salted hash from the
// password and persists the new user. The stored record carries the hash
// and salt base64-encoded; the plaintext password is never persisted.
func (s *Service) Register(ctx context.Context, username, email, phone, password string) (*User, error) {

	if anyFieldBlank(username, email, phone, password) {
		return nil, common.ErrorValidation
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, common.ErrorAlreadyExists
	}

	hash, salt, err := hashing.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &User{
		Username:     username,
		Email:        email,
		Phone:        phone,
		PasswordHash: base64.StdEncoding.EncodeToString(hash),
		Salt:         base64.StdEncoding.EncodeToString(salt),
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		// the store may race the existence check on a unique index
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login verifies the credentials and issues a bearer token bound to the
// user's email. Unknown email and wrong password yield the same
// ErrorUnauthorized so callers cannot probe for account existence.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {

	if anyFieldBlank(email, password) {
		return "", common.ErrorValidation
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	salt, err := base64.StdEncoding.DecodeString(user.Salt)
	if err != nil {
		return "", common.ErrorInternal
	}
	expected, err := base64.StdEncoding.DecodeString(user.PasswordHash)
	if err != nil {
		return "", common.ErrorInternal
	}

	if !hashing.Verify(password, salt, expected) {
		return "", common.ErrorUnauthorized
	}

	token, _, err := s.issuer.Issue(user.Email, s.loginTokenValidity)
	if err != nil {
		return "", common.ErrorIssuance
	}

	return token, nil
}

// RenewToken issues a fresh token for an already-authenticated subject.
// Renewal grants a longer validity window than login; both windows come
// from configuration.
func (s *Service) RenewToken(ctx context.Context, email string) (*RenewedToken, error) {

	if anyFieldBlank(email) {
		return nil, common.ErrorValidation
	}

	token, expiresAt, err := s.issuer.Issue(email, s.renewTokenValidity)
	if err != nil {
		return nil, common.ErrorIssuance
	}

	return &RenewedToken{Token: token, ExpiresAt: expiresAt}, nil
}

// List returns all users. Store failures propagate to the caller instead
// of degrading to an empty result.
func (s *Service) List(ctx context.Context) ([]User, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return list, nil
}
