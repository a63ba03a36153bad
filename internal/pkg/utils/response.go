package utils

import (
	stderrors "errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/pkg/errors"
)

type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Error *errors.AppError `json:"error"`
}

type Meta struct {
	Total    int     `json:"total,omitempty"`
	Dropped  int     `json:"dropped,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	TimeMSec float64 `json:"time_ms,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return c.JSON(SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func SendCreated(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(SuccessResponse{Data: data})
}

func SendError(c *fiber.Ctx, err error) error {
	appErr := ToAppError(err)
	return c.Status(appErr.StatusCode).JSON(ErrorResponse{
		Error: appErr,
	})
}

// ToAppError переводит доменные ошибки в коды API. Неизвестная ошибка - 500.
func ToAppError(err error) *errors.AppError {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}

	var validationErrs validator.ValidationErrors
	switch {
	case stderrors.As(err, &validationErrs):
		fields := make(map[string]interface{}, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = fe.Tag()
		}
		return errors.ErrInvalidRequest.WithDetails(fields)
	case stderrors.Is(err, domain.ErrStopNotFound):
		return errors.ErrStopNotFound
	case stderrors.Is(err, domain.ErrSessionNotFound):
		return errors.ErrSessionNotFound
	case stderrors.Is(err, domain.ErrEmptyStopID):
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"stop_id": "required"})
	case stderrors.Is(err, domain.ErrInvalidQuery):
		return errors.ErrInvalidRequest.Wrap(err)
	case stderrors.Is(err, domain.ErrInvalidCoordinates):
		return errors.ErrInvalidCoordinates
	case stderrors.Is(err, domain.ErrUnknownTransportMode):
		return errors.ErrInvalidTransportMode
	case stderrors.Is(err, domain.ErrActivitiesDisabled):
		return errors.ErrActivitiesDisabled
	case stderrors.Is(err, domain.ErrDecode), stderrors.Is(err, domain.ErrUpstream):
		return errors.ErrUpstream.Wrap(err)
	default:
		return errors.ErrInternalServer.Wrap(err)
	}
}
