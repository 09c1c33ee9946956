package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/bboxmap/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, invalid_field, area_too_large, upstream_error, etc.
	Message   string `json:"message"` // Human-readable message
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string, details any) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg, nil)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg, nil)
}

// errDomain maps pipeline errors onto responses. Input problems are 400s;
// a failed upstream fetch is a 502.
func errDomain(c *fiber.Ctx, err error) error {
	var (
		fieldErrs domain.FieldErrors
		orderErr  *domain.OrderingError
		areaErr   *domain.AreaLimitError
		netErr    *domain.NetworkError
	)
	switch {
	case errors.As(err, &fieldErrs):
		return newError(c, fiber.StatusBadRequest, "invalid_field", "one or more coordinates are invalid", fieldErrs)
	case errors.As(err, &orderErr):
		return newError(c, fiber.StatusBadRequest, "invalid_order", domain.OrderingMessage, fiber.Map{"axis": orderErr.Axis})
	case errors.As(err, &areaErr):
		return newError(c, fiber.StatusBadRequest, "area_too_large", domain.AreaMessage,
			fiber.Map{"area": areaErr.Area, "limit": areaErr.Limit})
	case errors.As(err, &netErr):
		details := fiber.Map{}
		if netErr.StatusCode != 0 {
			details["upstream_status"] = netErr.StatusCode
		}
		return newError(c, fiber.StatusBadGateway, "upstream_error", netErr.Error(), details)
	default:
		return errInternal(c, err.Error())
	}
}
