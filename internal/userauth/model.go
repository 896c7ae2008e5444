package userauth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type PasswordOptions struct {
	Cost int `toml:"cost"`
}

func (o *PasswordOptions) FillDefaults() {
	if o.Cost == 0 {
		o.Cost = 10
	}
}

// User is an account that can log in. Only admins have anything to do after logging in.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password"`
	IsAdmin      bool   `gorm:"not null;default:false"`
}

func (u *User) SetPassword(password []byte, o PasswordOptions) error {
	o.FillDefaults()
	hash, err := bcrypt.GenerateFromPassword(password, o.Cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) VerifyPassword(password []byte) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), password) == nil
}

// Identity is what a session remembers about the logged-in user. It is resolved once per
// request and never mutated afterwards.
type Identity struct {
	UserID   uint
	Username string
	IsAdmin  bool
}

func (u *User) Identity() Identity {
	return Identity{
		UserID:   u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}
}
