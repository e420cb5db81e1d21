package helpers

import (
	"errors"
	"fmt"
	"strconv"

	"trainingportal/config"
	"trainingportal/domain"
	"trainingportal/middleware"

	"github.com/asaskevich/govalidator"
	"github.com/gofiber/fiber/v2"
)

// ErrorStatus maps usecase errors onto HTTP status codes.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrEditionArchived):
		return fiber.StatusForbidden
	case domain.IsValidationError(err):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrEditionNotFound), errors.Is(err, domain.ErrLessonNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConcurrentUpdate), errors.Is(err, domain.ErrLessonLocked), errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// Fail writes the error envelope and the request log line.
func Fail(c *fiber.Ctx, handler, message string, err error) error {
	status := ErrorStatus(err)
	config.PrintLogInfo(middleware.Username(c), status, handler)

	var detail interface{} = err.Error()
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		detail = ve
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   detail,
	})
}

func BadRequest(c *fiber.Ctx, handler string, detail interface{}) error {
	config.PrintLogInfo(middleware.Username(c), fiber.StatusBadRequest, handler)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Invalid request body",
		"error":   detail,
	})
}

func OK(c *fiber.Ctx, status int, handler, message string, data interface{}) error {
	config.PrintLogInfo(middleware.Username(c), status, handler)
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// Validate runs the govalidator tags of req and returns the messages per field.
func Validate(req interface{}) []string {
	if _, err := govalidator.ValidateStruct(req); err != nil {
		var out []string
		for field, msg := range govalidator.ErrorsByField(err) {
			out = append(out, fmt.Sprintf("%s: %s", field, msg))
		}
		return out
	}
	return nil
}

func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.NewValidationError(name, "invalid id")
	}
	return uint(id), nil
}

// QueryID parses an optional numeric query parameter.
func QueryID(c *fiber.Ctx, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, domain.NewValidationError(name, "invalid id")
	}
	v := uint(id)
	return &v, nil
}
