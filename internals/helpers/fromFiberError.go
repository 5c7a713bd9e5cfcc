package helper

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"garderie_backend/internals/helpers/apperr"
)

// FromFiberError renders *fiber.Error values (middleware, BodyParser) and
// falls back to FromAppError for everything else.
func FromFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	return FromAppError(c, err)
}

// FromAppError is the single translation point from service errors to HTTP.
func FromAppError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return JsonValidationError(c, apperr.ValidationFieldsOf(ve))
	}

	ae, ok := apperr.As(err)
	if !ok {
		zap.L().Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return JsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	status := StatusOf(ae.Kind)
	if ae.Kind == apperr.KindInternal {
		zap.L().Error(ae.Message, zap.String("path", c.Path()), zap.Error(ae.Err))
	}
	if ae.Kind == apperr.KindValidation && len(ae.Fields) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Success:   false,
			Message:   ae.Message,
			ErrorCode: "VALIDATION_ERROR",
			Errors:    ae.Fields,
		})
	}
	return c.Status(status).JSON(ErrorResponse{
		Success:   false,
		Message:   ae.Message,
		ErrorCode: statusToErrorCode(status),
		Retryable: ae.Retryable,
	})
}

func StatusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindLocked:
		return fiber.StatusLocked
	default:
		return fiber.StatusInternalServerError
	}
}

// NewValidator returns a validator that reports json field names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
