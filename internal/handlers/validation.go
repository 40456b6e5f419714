package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateStruct checks s, or only the named struct fields when fields is
// non-empty, and turns failures into a 400.
func validateStruct(s interface{}, fields ...string) error {
	var err error
	if len(fields) > 0 {
		err = validate.StructPartial(s, fields...)
	} else {
		err = validate.Struct(s)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}

	if len(missing) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid fields: %s", strings.Join(invalid, ", ")))
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}
