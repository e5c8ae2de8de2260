package validation

import (
	"github.com/go-playground/validator/v10"

	"go-hackathon-backend/internal/domain"
)

// RegisterValidators adds the custom binding tags handlers use. Call
// once against gin's binding engine before routes are registered.
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("status_name", statusName)
}

// statusName accepts any lifecycle stage name, e.g. "applied".
func statusName(fl validator.FieldLevel) bool {
	_, err := domain.ParseStatus(fl.Field().String())
	return err == nil
}
