package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sitewise/sitewise-server/internal/auth"
	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/store"
)

// UserService handles account management and login.
type UserService struct {
	store  store.Store
	tokens *auth.TokenIssuer
}

func NewUserService(s store.Store, tokens *auth.TokenIssuer) *UserService {
	return &UserService{store: s, tokens: tokens}
}

// CreateUser registers a new account with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, email, displayName, role, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !auth.ValidRole(role) {
		return nil, errors.Wrapf(model.ErrValidation, "unknown role %q", role)
	}
	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return nil, errors.Wrapf(model.ErrConflict, "email %s already registered", email)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	u := &model.User{
		UserID:       uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		Role:         role,
		PasswordHash: hash,
		Status:       model.UserActive,
		CreationTime: time.Now().UTC(),
	}
	return s.store.Users().Create(ctx, u)
}

// Authenticate verifies credentials and returns the user plus a signed token.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, "", model.ErrUnauthorized
		}
		return nil, "", err
	}
	if u.Status != model.UserActive || !auth.CheckPassword(password, u.PasswordHash) {
		return nil, "", model.ErrUnauthorized
	}
	token, err := s.tokens.Issue(u.UserID, u.Email, u.DisplayName, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().Get(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.store.Users().List(ctx)
}

// UpdateUser changes role, status or display name. Password changes go
// through SetPassword.
func (s *UserService) UpdateUser(ctx context.Context, userID, displayName, role, status string) (*model.User, error) {
	u, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role != "" {
		if !auth.ValidRole(role) {
			return nil, errors.Wrapf(model.ErrValidation, "unknown role %q", role)
		}
		u.Role = role
	}
	if status != "" {
		if status != model.UserActive && status != model.UserInactive {
			return nil, errors.Wrapf(model.ErrValidation, "unknown status %q", status)
		}
		u.Status = status
	}
	if displayName != "" {
		u.DisplayName = displayName
	}
	return s.store.Users().Update(ctx, u)
}

// DeactivateUser flips the account to INACTIVE. Records are never deleted;
// a deactivated user simply cannot log in.
func (s *UserService) DeactivateUser(ctx context.Context, userID string) (*model.User, error) {
	return s.UpdateUser(ctx, userID, "", "", model.UserInactive)
}

// SetPassword replaces a user's password hash.
func (s *UserService) SetPassword(ctx context.Context, userID, password string) error {
	u, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	u.PasswordHash = hash
	_, err = s.store.Users().Update(ctx, u)
	return err
}

// SeedAdmin creates the bootstrap admin account when the user table is
// empty. A no-op otherwise, so restarts are safe.
func (s *UserService) SeedAdmin(ctx context.Context, email, password string, log zerolog.Logger) error {
	n, err := s.store.Users().Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if password == "" {
		log.Warn().Msg("no users exist and no admin password configured; skipping admin seed")
		return nil
	}
	u, err := s.CreateUser(ctx, email, "Administrator", auth.RoleAdmin, password)
	if err != nil {
		return errors.Wrap(err, "seed admin")
	}
	log.Info().Str("user_id", u.UserID).Str("email", u.Email).Msg("seeded bootstrap admin")
	return nil
}
