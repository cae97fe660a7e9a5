package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"todolist/models"
	"todolist/repository"
	"todolist/utils"
)

// CredentialStore hashes and verifies passwords.
type CredentialStore interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// UserDirectory registers users and checks their credentials.
type UserDirectory struct {
	users       repository.UserRepository
	credentials CredentialStore
	logger      *slog.Logger
}

func NewUserDirectory(users repository.UserRepository, credentials CredentialStore, logger *slog.Logger) *UserDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserDirectory{users: users, credentials: credentials, logger: logger}
}

// Register creates a user. A taken username is reported as a
// *models.ValidationError wrapping models.ErrDuplicateUsername.
func (d *UserDirectory) Register(ctx context.Context, username, password string) (*models.User, error) {
	username, err := utils.ValidateUsername(username)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := d.credentials.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := d.users.Create(ctx, username, hash)
	if errors.Is(err, models.ErrDuplicateUsername) {
		return nil, &models.ValidationError{
			Field:   "username",
			Message: "that username is already taken",
			Err:     models.ErrDuplicateUsername,
		}
	}
	if err != nil {
		d.logger.Error("register user failed", slog.String("username", username), slog.String("error", err.Error()))
		return nil, err
	}

	d.logger.Info("user registered", slog.String("username", username), slog.Int64("user_id", user.ID))
	return user, nil
}

// Authenticate returns models.ErrInvalidCredentials both for an unknown
// username and for a wrong password. The username is trimmed the same way
// Register trims it.
func (d *UserDirectory) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := d.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !d.credentials.Verify(password, user.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

func (d *UserDirectory) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return d.users.FindByID(ctx, id)
}

// EnsureDefaultUser creates the bootstrap account unless a user with that
// name already exists.
func (d *UserDirectory) EnsureDefaultUser(ctx context.Context, username, password string) error {
	_, err := d.users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	_, err = d.Register(ctx, username, password)
	if errors.Is(err, models.ErrDuplicateUsername) {
		return nil
	}
	if err != nil {
		return err
	}
	d.logger.Info("default user created", slog.String("username", username))
	return nil
}
