package database

import (
	"context"
	"fmt"

	"github.com/xtesports/xtesports/internal/userauth"
)

func (d *DB) GetUser(ctx context.Context, userID uint) (userauth.User, error) {
	var users []userauth.User
	err := d.db.WithContext(ctx).Where("id = ?", userID).Limit(1).Find(&users).Error
	if err != nil {
		return userauth.User{}, fmt.Errorf("get user: %w", err)
	}
	if len(users) == 0 {
		return userauth.User{}, userauth.ErrUserNotFound
	}
	return users[0], nil
}

func (d *DB) GetUserByUsername(ctx context.Context, username string) (userauth.User, error) {
	var users []userauth.User
	err := d.db.WithContext(ctx).Where("username = ?", username).Limit(1).Find(&users).Error
	if err != nil {
		return userauth.User{}, fmt.Errorf("get user: %w", err)
	}
	if len(users) == 0 {
		return userauth.User{}, userauth.ErrUserNotFound
	}
	return users[0], nil
}

func (d *DB) SaveUser(ctx context.Context, user *userauth.User) error {
	if err := d.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (d *DB) CountUsers(ctx context.Context) (int64, error) {
	var cnt int64
	err := d.db.WithContext(ctx).Model(&userauth.User{}).Count(&cnt).Error
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return cnt, nil
}

func (d *DB) ListUsers(ctx context.Context) ([]userauth.User, error) {
	var users []userauth.User
	err := d.db.WithContext(ctx).Select("id", "username", "is_admin").Order("id ASC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
