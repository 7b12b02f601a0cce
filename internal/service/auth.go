package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gfdmit/blogicum/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong    = errors.New("password is too long (maximum 72 characters)")
)

func hashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", ErrWeakPassword
	}
	// bcrypt rejects inputs over 72 bytes
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (svc *Service) Register(ctx context.Context, username, email, password string) (*repository.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return svc.repo.CreateUser(ctx, username, email, hash)
}

// Login checks the credentials and opens a fresh session. The session
// id goes into the cookie; nothing else is client-held state.
func (svc *Service) Login(ctx context.Context, username, password string) (*repository.Session, error) {
	user, err := svc.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	session := &repository.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: svc.now().Add(svc.sessionTTL),
	}
	if err := svc.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (svc *Service) Logout(ctx context.Context, sessionID string) error {
	return svc.repo.RevokeSession(ctx, sessionID)
}

// UserBySession resolves a session cookie to a user, treating expired
// and revoked sessions the same as unknown ones.
func (svc *Service) UserBySession(ctx context.Context, sessionID string) (*repository.User, error) {
	session, err := svc.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.RevokedAt != nil || session.ExpiresAt.Before(svc.now()) {
		return nil, repository.ErrNotFound
	}
	return svc.repo.GetUserByID(ctx, session.UserID)
}

// SessionTTL is exposed for cookie Max-Age.
func (svc *Service) SessionTTL() time.Duration { return svc.sessionTTL }
