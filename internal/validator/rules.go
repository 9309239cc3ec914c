package validator

import (
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/campus-market/internal/domain"
)

func registerCustomRules(v *validator.Validate, wrapper *Validator) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag %q: %v", tag, err)
		}
	}

	// campus_email requires the configured institutional domain suffix.
	mustRegister("campus_email", func(fl validator.FieldLevel) bool {
		email := strings.ToLower(strings.TrimSpace(fl.Field().String()))
		at := strings.LastIndex(email, "@")
		if at <= 0 || at == len(email)-1 {
			return false
		}
		return email[at+1:] == wrapper.emailDomain
	})

	// department accepts only the closed departments enum. The values contain
	// spaces, which rules out the built-in oneof tag.
	mustRegister("department", func(fl validator.FieldLevel) bool {
		return domain.ValidDepartment(domain.Department(fl.Field().String()))
	})

	mustRegister("service_category", func(fl validator.FieldLevel) bool {
		return domain.ValidServiceCategory(domain.ServiceCategory(fl.Field().String()))
	})
}
