package httpx

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/pkg/apperrors"
)

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Meta    any    `json:"meta,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func Send(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, Envelope{Success: true, Message: message, Data: data})
}

func SendMeta(c echo.Context, code int, message string, meta Meta, data any) error {
	return c.JSON(code, Envelope{Success: true, Message: message, Meta: meta, Data: data})
}

// SendError maps an application error onto the envelope. Unclassified errors
// become a generic 500 so internals never leak to the client.
func SendError(c echo.Context, err error) error {
	code := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.CodeUnauthorized:
		code = http.StatusUnauthorized
	case apperrors.CodeForbidden:
		code = http.StatusForbidden
	case apperrors.CodeNotFound:
		code = http.StatusNotFound
	case apperrors.CodeConflict:
		code = http.StatusConflict
	case apperrors.CodeBadRequest:
		code = http.StatusBadRequest
	}
	if code == http.StatusInternalServerError {
		c.Logger().Errorf("internal error: %v", err)
	}
	return c.JSON(code, Envelope{Success: false, Message: apperrors.MessageOf(err)})
}
