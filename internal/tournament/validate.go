package tournament

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type PayMethod string

const (
	PayManual PayMethod = "manual"
	PayHosted PayMethod = "hosted"
)

func ParsePayMethod(s string) PayMethod {
	if s == string(PayManual) {
		return PayManual
	}
	return PayHosted
}

type RegistrationForm struct {
	TeamName    string    `form:"team_name" validate:"required"`
	LeaderName  string    `form:"leader_name" validate:"required"`
	LeaderPhone string    `form:"leader_phone" validate:"min=6"`
	LeaderEmail string    `form:"leader_email" validate:"required,email"`
	Members     string    `form:"members"`
	InGame      string    `form:"ingame"`
	PayMethod   PayMethod `form:"pay_method"`
}

func ParseRegistrationForm(v url.Values) RegistrationForm {
	return RegistrationForm{
		TeamName:    v.Get("team_name"),
		LeaderName:  v.Get("leader_name"),
		LeaderPhone: v.Get("leader_phone"),
		LeaderEmail: v.Get("leader_email"),
		Members:     v.Get("members"),
		InGame:      v.Get("ingame"),
		PayMethod:   PayMethod(v.Get("pay_method")),
	}
}

func (f RegistrationForm) trimmed() RegistrationForm {
	f.TeamName = strings.TrimSpace(f.TeamName)
	f.LeaderName = strings.TrimSpace(f.LeaderName)
	f.LeaderPhone = strings.TrimSpace(f.LeaderPhone)
	f.LeaderEmail = strings.TrimSpace(f.LeaderEmail)
	return f
}

type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when a registration form is rejected. Form holds the values as
// they were submitted, so that the page can show them again.
type ValidationError struct {
	Fields []FieldError
	Form   RegistrationForm
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("invalid registration fields: %v", strings.Join(names, ", "))
}

func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return msgs
}

var fieldMessages = map[string]string{
	"team_name":    "Team name is required",
	"leader_name":  "Leader name is required",
	"leader_phone": "Phone required",
	"leader_email": "Valid email required",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("form")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

func validateForm(v *validator.Validate, form RegistrationForm) error {
	err := v.Struct(form.trimmed())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}
	res := &ValidationError{Form: form}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		res.Fields = append(res.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return res
}
