package userauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type ManagerOptions struct {
	Password PasswordOptions `toml:"password"`
}

func (o *ManagerOptions) FillDefaults() {
	o.Password.FillDefaults()
}

type Manager struct {
	db  DB
	o   ManagerOptions
	log *slog.Logger
}

func NewManager(log *slog.Logger, db DB, o ManagerOptions) *Manager {
	o.FillDefaults()
	return &Manager{
		db:  db,
		o:   o,
		log: log,
	}
}

func (m *Manager) ListUsers(ctx context.Context) ([]User, error) {
	return m.db.ListUsers(ctx)
}

func (m *Manager) GetUser(ctx context.Context, userID uint) (User, error) {
	return m.db.GetUser(ctx, userID)
}

// Authenticate checks the password of the given user. Unknown users and wrong passwords are not
// told apart.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := m.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	if !user.VerifyPassword([]byte(password)) {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin creates an admin with the given credentials, or resets the password and the admin
// flag of an existing user with this name.
func (m *Manager) EnsureAdmin(ctx context.Context, username, password string) (User, error) {
	if err := ValidateUsername(username); err != nil {
		return User{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return User{}, err
	}
	user, err := m.db.GetUserByUsername(ctx, username)
	created := false
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return User{}, fmt.Errorf("get user: %w", err)
		}
		user = User{Username: username}
		created = true
	}
	if err := user.SetPassword([]byte(password), m.o.Password); err != nil {
		return User{}, err
	}
	user.IsAdmin = true
	if err := m.db.SaveUser(ctx, &user); err != nil {
		return User{}, fmt.Errorf("save user: %w", err)
	}
	m.log.Info("admin user ensured",
		slog.String("username", username),
		slog.Bool("created", created),
	)
	return user, nil
}

// WarnIfNoUsers logs a hint about bootstrapping when nobody can log in yet.
func (m *Manager) WarnIfNoUsers(ctx context.Context) error {
	cnt, err := m.db.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if cnt == 0 {
		m.log.Warn("no users exist yet, set ADMIN_USER and ADMIN_PASS or run create-admin")
	}
	return nil
}
