package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nooktextiles/nook/internal/auth"
	"github.com/nooktextiles/nook/internal/domain"
	"github.com/nooktextiles/nook/internal/remote"
	"github.com/nooktextiles/nook/internal/storage"
)

// storedUser is the mock user store record. PasswordHash stays inside
// this package.
type storedUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Name         string `json:"name"`
	CreatedAt    string `json:"createdAt"`
}

func (u storedUser) public() *domain.User {
	return &domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

type userService struct {
	client *remote.Client
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a UserService. Sign-in goes through the auth
// backend when reachable; otherwise the local mock user store with
// bcrypt-hashed passwords is used.
func NewUserService(client *remote.Client, store storage.Store, logger *slog.Logger) domain.UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		client: client,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

type authResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

func (s *userService) Register(ctx context.Context, email, password, name string) (*domain.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.client != nil {
		var resp authResponse
		err := s.client.PostJSON(ctx, "/api/auth/register",
			map[string]string{"email": email, "password": password, "name": name}, &resp)
		if err == nil {
			return s.signIn(ctx, &resp.User, resp.Token)
		}
		s.logger.Warn("auth backend unavailable, using mock registration", "error", err)
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			return &domain.AuthResult{Success: false, Error: domain.ErrEmailTaken.Message}, nil
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return &domain.AuthResult{Success: false, Error: err.Error()}, nil
	}

	now := s.now()
	user := storedUser{
		ID:           fmt.Sprintf("user_%d_%s", now.UnixMilli(), randomSuffix(9)),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    now.UTC().Format(time.RFC3339),
	}
	users = append(users, user)
	if err := s.store.Set(ctx, storage.KeyMockUsers, users); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "UserService.Register", "Failed to save user")
	}

	return s.signIn(ctx, user.public(), auth.GenerateToken())
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.client != nil {
		var resp authResponse
		err := s.client.PostJSON(ctx, "/api/auth/login",
			map[string]string{"email": email, "password": password}, &resp)
		if err == nil {
			return s.signIn(ctx, &resp.User, resp.Token)
		}
		s.logger.Warn("auth backend unavailable, using mock login", "error", err)
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email != email {
			continue
		}
		if auth.VerifyPassword(password, u.PasswordHash) != nil {
			break
		}
		return s.signIn(ctx, u.public(), auth.GenerateToken())
	}
	return &domain.AuthResult{Success: false, Error: domain.ErrInvalidCredentials.Message}, nil
}

func (s *userService) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, storage.KeyUser); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "UserService.Logout", "Failed to clear session")
	}
	if err := s.store.Delete(ctx, storage.KeyAuthToken); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "UserService.Logout", "Failed to clear session")
	}
	return nil
}

func (s *userService) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	err := s.store.Get(ctx, storage.KeyUser, &user)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, domain.Unauthorized("UserService.CurrentUser", "Not signed in")
	}
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "UserService.CurrentUser", "Failed to load session")
	}
	return &user, nil
}

// signIn records the active session and returns a successful result.
func (s *userService) signIn(ctx context.Context, user *domain.User, token string) (*domain.AuthResult, error) {
	if err := s.store.Set(ctx, storage.KeyUser, user); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "UserService", "Failed to save session")
	}
	if err := s.store.Set(ctx, storage.KeyAuthToken, token); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "UserService", "Failed to save session")
	}
	return &domain.AuthResult{Success: true, User: user, Token: token}, nil
}

func (s *userService) loadUsers(ctx context.Context) ([]storedUser, error) {
	var users []storedUser
	err := s.store.Get(ctx, storage.KeyMockUsers, &users)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []storedUser{}, nil
	}
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "UserService", "Failed to load users")
	}
	return users, nil
}
