package exts

import (
	"errors"
	"reflect"
	"strings"

	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validation = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			} else if len(name) > 0 {
				return name
			}
		}
		return field.Name
	})
	return v
}

// BindAndValidate parses the body into out and runs its validate tags.
// The first failing field is reported as a validation error.
func BindAndValidate(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := validation.Struct(out); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			field := fields[0]
			return services.NewValidationError(field.Field(), describeFailure(field))
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return nil
}

func describeFailure(field validator.FieldError) string {
	switch field.Tag() {
	case "required":
		return field.Field() + " is required"
	case "min", "gte":
		return field.Field() + " must be at least " + field.Param()
	case "max", "lte":
		return field.Field() + " must be at most " + field.Param()
	case "gt":
		return field.Field() + " must be greater than " + field.Param()
	default:
		return field.Field() + " failed on " + field.Tag()
	}
}
