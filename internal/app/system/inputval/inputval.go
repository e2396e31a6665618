// Package inputval validates decoded request bodies with struct tags.
//
// Besides the stock go-playground tags it registers the domain tags
// "priority", "featurestatus", "memberrole" and "invitecode".
package inputval

import (
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/invitecode"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
			return models.ValidPriority(fl.Field().String())
		})
		_ = v.RegisterValidation("featurestatus", func(fl validator.FieldLevel) bool {
			return models.ValidStatus(fl.Field().String())
		})
		_ = v.RegisterValidation("memberrole", func(fl validator.FieldLevel) bool {
			r := fl.Field().String()
			return r == models.RoleAdmin || r == models.RoleMember
		})
		_ = v.RegisterValidation("invitecode", func(fl validator.FieldLevel) bool {
			return invitecode.Valid(invitecode.Normalize(fl.Field().String()))
		})
		validate = v
	})
	return validate
}

// Struct validates s and returns an apperr Validation error describing the
// first failing field, or nil.
func Struct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		code := apperr.CodeInvalidInput
		if fe.Tag() == "invitecode" {
			code = apperr.CodeInvalidInviteCode
		}
		return apperr.Validation(code, "%s: %s", fe.Field(), message(fe))
	}
	return apperr.Validation(apperr.CodeInvalidInput, "%v", err)
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.String {
			return "must be at least " + e.Param() + " characters"
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "priority":
		return "must be one of: low medium high"
	case "featurestatus":
		return "must be one of: backlog inProgress done"
	case "memberrole":
		return "must be admin or member"
	case "invitecode":
		return "must look like XXXX-XXXX"
	default:
		return fmt.Sprintf("failed %q", e.Tag())
	}
}

// IsValidEmail reports whether s is a bare address (no display name).
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s && a.Name == ""
}
