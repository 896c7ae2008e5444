package userauth

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type credentials struct {
	Username string `validate:"min=3,max=64,username"`
	Password string `validate:"min=6,max=72"`
}

var credValidator = func() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}()

var credMessages = map[string]string{
	"Username.min":      "username must have from 3 to 64 characters",
	"Username.max":      "username must have from 3 to 64 characters",
	"Username.username": "allowed characters in username: A-Z, a-z, 0-9, -, _, .",
	"Password.min":      "password must have from 6 to 72 characters",
	"Password.max":      "password must have from 6 to 72 characters",
}

func validateField(c credentials, field string) error {
	err := credValidator.StructPartial(c, field)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate %v: %w", field, err)
	}
	fe := verrs[0]
	if msg, ok := credMessages[fe.Field()+"."+fe.Tag()]; ok {
		return errors.New(msg)
	}
	return fmt.Errorf("bad %v", field)
}

// ValidatePassword checks the length in characters. bcrypt ignores everything past 72 bytes.
func ValidatePassword(password string) error {
	return validateField(credentials{Password: password}, "Password")
}

func ValidateUsername(username string) error {
	return validateField(credentials{Username: username}, "Username")
}
