package auth

import (
	"context"
	"errors"
	"time"

	"bookreview/internal/platform/crypto"
	"bookreview/internal/user"
	"bookreview/internal/validation"
)

// SignupInput is the body of POST /auth/signup.
type SignupInput struct {
	Username string `json:"username" validate:"notblank,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is an issued bearer token and the account it belongs to.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      user.User `json:"user"`
}

type Service struct {
	secret  string
	ttl     time.Duration
	users   *user.Service
	revoked Revocations
}

func NewService(secret string, ttl time.Duration, users *user.Service, revoked Revocations) *Service {
	return &Service{secret: secret, ttl: ttl, users: users, revoked: revoked}
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (Session, error) {
	if err := validation.Struct(in); err != nil {
		return Session{}, err
	}
	if err := crypto.ValidatePasswordStrength(in.Password); err != nil {
		return Session{}, validation.New("password", err.Error())
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}

	u, err := s.users.Register(ctx, in.Email, in.Username, hash)
	if err != nil {
		return Session{}, err
	}
	return s.issue(u)
}

// Login verifies the credentials. Unknown emails and wrong passwords both
// yield crypto.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	if err := validation.Struct(in); err != nil {
		return Session{}, err
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, user.ErrNotFound) {
		return Session{}, crypto.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, in.Password) {
		return Session{}, crypto.ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *Service) issue(u user.User) (Session, error) {
	token, _, err := crypto.GenerateToken(s.secret, u.ID, u.Role, s.ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: time.Now().Add(s.ttl), User: u}, nil
}

// Logout revokes the token described by claims for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *crypto.Claims) error {
	if claims == nil || claims.ID == "" {
		return crypto.ErrInvalidToken
	}
	expiresAt := time.Now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.Sub, expiresAt)
}

// IsRevoked reports whether the token with jti was logged out.
func (s *Service) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revoked.IsRevoked(ctx, jti)
}

// PurgeRevoked drops revocations whose tokens have expired anyway.
func (s *Service) PurgeRevoked(ctx context.Context) (int64, error) {
	return s.revoked.PurgeExpired(ctx)
}
