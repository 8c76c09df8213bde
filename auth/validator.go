package auth

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Settings configures the session tokens of the provider.
type Settings struct {
	Secret        string        `validate:"required,min=32"`
	TokenDuration time.Duration `validate:"gt=0"`
}

func ValidateSettings(settings Settings) error {
	return validate.Struct(settings)
}
