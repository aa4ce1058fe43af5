package validation

import (
	"errors"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// RequestError is a malformed or invalid request body.
type RequestError struct {
	Message string
	Fields  map[string]string
}

func (e *RequestError) Error() string { return e.Message }

// BindAndValidate parses the JSON body into out and validates it.
func BindAndValidate(c *fiber.Ctx, out any, v *validatorv10.Validate) error {
	if err := c.BodyParser(out); err != nil {
		return &RequestError{Message: "invalid request body"}
	}
	if err := v.Struct(out); err != nil {
		return &RequestError{Message: "validation failed", Fields: FieldErrors(err)}
	}
	return nil
}

// Respond writes err as a 400 response.
func Respond(c *fiber.Ctx, err error) error {
	var re *RequestError
	if !errors.As(err, &re) {
		re = &RequestError{Message: err.Error()}
	}
	body := fiber.Map{"error": re.Message}
	if len(re.Fields) > 0 {
		body["fields"] = re.Fields
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}
