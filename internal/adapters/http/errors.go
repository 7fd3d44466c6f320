package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/reproject"
)

const (
	msgUnknownZone    = "Not valid zone for Spain."
	msgUnknownDest    = "Not valid destination system."
	msgMissingXY      = "Must set both x and y query params."
	msgOnlyJSON       = "Only accepts application/json."
	msgInvalidJSON    = "Invalid JSON format. Include array of coordinates (i.e. [[x1,y1],...,[xn,yn]]) or a GeoJSON object."
	msgUnavailable    = "Service dependency not configured."
	msgRequestTimeout = "Request took too long."
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, transform_failed, ...
	Message   string `json:"message"` // Human-readable message
	Path      string `json:"path,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return c.Status(status).JSON(makeError(requestID(c), status, code, message))
}

func makeError(reqID string, status int, code, message string) APIError {
	return APIError{Status: status, Code: code, Message: message, RequestID: reqID}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errUnsupportedMedia returns a 415 error.
func errUnsupportedMedia(c *fiber.Ctx) error {
	return newError(c, fiber.StatusUnsupportedMediaType, "unsupported_media_type", msgOnlyJSON)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// classify maps a core error onto a response. The bool is false for errors
// that are not client-facing.
func classify(err error, reqID string) (APIError, bool) {
	var shapeErr *reproject.InputShapeError
	var transformErr *reproject.TransformError

	switch {
	case errors.Is(err, domain.ErrUnknownZone):
		return makeError(reqID, fiber.StatusNotFound, "not_found", msgUnknownZone), true
	case errors.Is(err, domain.ErrUnknownDestination):
		return makeError(reqID, fiber.StatusNotFound, "not_found", msgUnknownDest), true
	case errors.Is(err, domain.ErrNotFound):
		return makeError(reqID, fiber.StatusNotFound, "not_found", "Resource not found."), true
	case errors.Is(err, reproject.ErrInvalidJSON):
		return makeError(reqID, fiber.StatusBadRequest, "bad_request", msgInvalidJSON), true
	case errors.As(err, &shapeErr):
		e := makeError(reqID, fiber.StatusBadRequest, "bad_request", shapeErr.Error())
		e.Path = shapeErr.Path
		return e, true
	case errors.As(err, &transformErr):
		e := makeError(reqID, fiber.StatusUnprocessableEntity, "transform_failed", transformErr.Error())
		e.Path = transformErr.Path
		return e, true
	case errors.Is(err, domain.ErrUnavailable):
		return makeError(reqID, fiber.StatusServiceUnavailable, "unavailable", msgUnavailable), true
	case errors.Is(err, context.DeadlineExceeded):
		return makeError(reqID, fiber.StatusRequestTimeout, "timeout", msgRequestTimeout), true
	}
	return makeError(reqID, fiber.StatusInternalServerError, "internal_error", "Internal server error."), false
}

// writeError renders err as an APIError. Unexpected errors are logged and
// their details withheld from the client.
func writeError(c *fiber.Ctx, err error) error {
	e, known := classify(err, requestID(c))
	if !known {
		LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(e.Status).JSON(e)
}

// ErrorHandler renders errors that escape handlers, such as fiber's own
// 404/405/408 errors, in the APIError format.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "error"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "not_found"
		case fiber.StatusMethodNotAllowed:
			code = "method_not_allowed"
		case fiber.StatusRequestTimeout:
			code = "timeout"
		case fiber.StatusRequestEntityTooLarge:
			code = "payload_too_large"
		case fiber.StatusUpgradeRequired:
			code = "upgrade_required"
		case fiber.StatusBadRequest:
			code = "bad_request"
		}
		return newError(c, fe.Code, code, fe.Message)
	}
	LoggerFromCtx(c.UserContext()).Error("unhandled error", "path", c.Path(), "error", err)
	return errInternal(c, "Internal server error.")
}
