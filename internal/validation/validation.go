// Package validation checks inbound request fields and reports failures as
// {field: messageKey} maps; the transport boundary localizes the keys.
package validation

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"accounts/internal/domain"
	"accounts/internal/dto"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var (
	lowerPattern = regexp.MustCompile(`[a-z]`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	digitPattern = regexp.MustCompile(`\d`)
)

// EmailLookup resolves an account by email; the uniqueness rule only needs to
// know whether one exists.
type EmailLookup interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type UserValidator struct {
	users EmailLookup
}

func NewUserValidator(users EmailLookup) *UserValidator {
	return &UserValidator{users: users}
}

// Register validates a registration request. A nil result means the request
// passed; otherwise the map carries one message key per failing field.
func (v *UserValidator) Register(ctx context.Context, req dto.RegisterRequest) map[string]string {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Username,
			validation.Required.Error("USERNAME_NULL"),
			validation.Length(4, 32).Error("USERNAME_SIZE"),
		),
		validation.Field(&req.Email,
			validation.Required.Error("EMAIL_NULL"),
			is.Email.Error("EMAIL_INVALID"),
			validation.By(emailDomainHasDot),
			validation.By(v.emailNotInUse(ctx)),
		),
		validation.Field(&req.Password,
			validation.Required.Error("PASSWORD_NULL"),
			validation.Length(6, 0).Error("PASSWORD_SIZE"),
			validation.By(passwordComplexity),
		),
	)
	return toFieldKeys(err)
}

// UserUpdate validates the self-service profile patch. Username is the only
// mutable field and keeps the registration constraints.
func UserUpdate(req dto.UserUpdateRequest) map[string]string {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Username,
			validation.Required.Error("USERNAME_NULL"),
			validation.Length(4, 32).Error("USERNAME_SIZE"),
		),
	)
	return toFieldKeys(err)
}

// emailDomainHasDot rejects addresses like user@mail that pass the general
// syntax check but have no top-level domain.
func emailDomainHasDot(value interface{}) error {
	s, _ := value.(string)
	at := strings.LastIndex(s, "@")
	if at < 0 || !strings.Contains(s[at+1:], ".") {
		return errors.New("EMAIL_INVALID")
	}
	return nil
}

func (v *UserValidator) emailNotInUse(ctx context.Context) validation.RuleFunc {
	return func(value interface{}) error {
		email, _ := value.(string)
		if _, err := v.users.FindByEmail(ctx, email); err == nil {
			return errors.New("EMAIL_IN_USE")
		}
		return nil
	}
}

func passwordComplexity(value interface{}) error {
	s, _ := value.(string)
	if !lowerPattern.MatchString(s) || !upperPattern.MatchString(s) || !digitPattern.MatchString(s) {
		return errors.New("PASSWORD_PATTERN")
	}
	return nil
}

func toFieldKeys(err error) map[string]string {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return map[string]string{"request": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for field, ferr := range errs {
		out[field] = ferr.Error()
	}
	return out
}
