package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"wardrobe/internal/config"
	"wardrobe/internal/models"
	"wardrobe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	lettersPattern     = regexp.MustCompile(`^[а-яА-Яa-zA-Z\-]+$`)
	capitalizedPattern = regexp.MustCompile(`^[A-ZА-Я][a-zа-я]+$`)

	minBirthdate = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	maxBirthdate = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
)

// ValidationError lists the request fields that failed validation.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return services.ErrValidation
}

// NewValidator returns a validator that also knows the shop's custom tags.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "letters", func(fl validator.FieldLevel) bool {
		return lettersPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "capitalized", func(fl validator.FieldLevel) bool {
		return capitalizedPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "size", func(fl validator.FieldLevel) bool {
		return models.IsValidSize(models.NormalizeSize(fl.Field().String()))
	})
	mustRegister(v, "birthdate", func(fl validator.FieldLevel) bool {
		d, err := time.Parse(config.BirthdateLayout, fl.Field().String())
		return err == nil && !d.Before(minBirthdate) && d.Before(maxBirthdate)
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Field required"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", e.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", e.Param())
	case "email":
		return "Must be a valid email address"
	case "letters":
		return "Should contain only letters"
	case "capitalized":
		return `Must contain only letters, first character capital, example: "Shirt"`
	case "size":
		return fmt.Sprintf("Size should be in: %v", models.Sizes)
	case "birthdate":
		return "Must be a date in range 1970-2018, format 2000-12-30"
	default:
		return fmt.Sprintf("Failed on the '%s' tag", e.Tag())
	}
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = fieldMessage(e)
	}
	return &ValidationError{Message: "Validation failed", Fields: fields}
}

// validateStruct runs struct validation and converts failures.
func validateStruct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		return toValidationError(err)
	}
	return nil
}

// validateParam checks a single path or query parameter.
func validateParam(v *validator.Validate, name, value, tag string) error {
	if err := v.Var(value, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ValidationError{
				Message: "Validation failed",
				Fields:  map[string]string{name: fieldMessage(verrs[0])},
			}
		}
		return err
	}
	return nil
}

// parseBody decodes the request body, reporting malformed input as a
// validation failure.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &ValidationError{
			Message: "Invalid request body",
			Fields:  map[string]string{"body": err.Error()},
		}
	}
	return nil
}
