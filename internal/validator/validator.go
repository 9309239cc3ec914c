package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// Validator wraps go-playground/validator with the marketplace's custom rules.
type Validator struct {
	validate    *validator.Validate
	emailDomain string
}

// New builds a validator instance. emailDomain is the institutional domain
// suffix (without the leading @) enforced by the campus_email rule.
func New(emailDomain string) *Validator {
	v := validator.New()

	// Report JSON field names in error details rather than Go struct fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	wrapper := &Validator{validate: v, emailDomain: strings.ToLower(emailDomain)}
	registerCustomRules(v, wrapper)
	return wrapper
}

// Validate checks the struct and returns a VALIDATION_FAILED DomainError with
// per-field details on failure.
func (v *Validator) Validate(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewInternalError(err)
	}

	details := make(map[string]any, len(validationErrors))
	for _, fe := range validationErrors {
		details[fe.Field()] = messageFor(fe)
	}
	return apperrors.NewValidationError("request validation failed", details)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "campus_email":
		return "only institutional email addresses are allowed"
	case "department":
		return "unknown department"
	case "service_category":
		return "unknown service category"
	default:
		return "invalid value (failed on '" + fe.Tag() + "' rule)"
	}
}
