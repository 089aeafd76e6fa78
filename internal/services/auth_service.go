// Package services – AuthService
//
// This file implements AuthService, which owns account registration, login
// verification, and session token issuance. Passwords are stored as bcrypt
// hashes; sessions are stateless HMAC-signed tokens carried in an HTTP-only
// cookie, so there is no server-side session table to maintain.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/repo"
)

// Session is the authenticated identity decoded from a session token.
type Session struct {
	UserID  uint
	IsAdmin bool
}

// sessionClaims is the JWT payload for a session token.
type sessionClaims struct {
	IsAdmin bool `json:"adm"`
	jwt.RegisteredClaims
}

// AuthService provides registration, credential verification, and session
// token handling.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// Secret signs session tokens (HMAC-SHA256).
	Secret []byte
	// TTL bounds session token lifetime.
	TTL time.Duration
}

// Register creates a new account. Username and email must be unused;
// the password is hashed before it reaches the store.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if _, err := repo.GetUserByUsername(ctx, s.DB, username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if _, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return repo.CreateUser(ctx, s.DB, username, email, string(hash), false)
}

// Login verifies credentials and returns the account. The identifier is
// an email address when it contains '@', a username otherwise. Unknown
// accounts and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)

	var (
		u   *domain.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = repo.GetUserByEmail(ctx, s.DB, identifier)
	} else {
		u, err = repo.GetUserByUsername(ctx, s.DB, identifier)
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetUser returns the account for an authenticated session.
func (s *AuthService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// IssueToken mints a signed session token for the user.
func (s *AuthService) IssueToken(u *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ParseToken validates a session token and returns the identity it carries.
func (s *AuthService) ParseToken(token string) (Session, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return Session{}, ErrInvalidCredentials
	}
	var id uint
	if _, err := fmt.Sscanf(claims.Subject, "%d", &id); err != nil || id == 0 {
		return Session{}, ErrInvalidCredentials
	}
	return Session{UserID: id, IsAdmin: claims.IsAdmin}, nil
}
