package httpapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// jsendResponse wraps every response except a successful /translate.
// Failures repeat the message as detail, which is where FastAPI clients look.
type jsendResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Code    int    `json:"code,omitempty"`
}

func success(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, jsendResponse{
		Status: statusSuccess,
		Data:   data,
	})
}

func fail(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, jsendResponse{
		Status:  statusFail,
		Data:    data,
		Message: message,
		Detail:  message,
	})
}

// failValidation reports field errors as data and as a "field: message; ..."
// detail line ordered by field.
func failValidation(c echo.Context, fieldErrors map[string]string) error {
	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+fieldErrors[field])
	}

	return c.JSON(http.StatusBadRequest, jsendResponse{
		Status:  statusFail,
		Data:    map[string]any{"validation_errors": fieldErrors},
		Message: "Validation failed",
		Detail:  strings.Join(parts, "; "),
	})
}

func serverError(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusInternalServerError, jsendResponse{
		Status:  statusError,
		Data:    data,
		Message: message,
		Detail:  message,
		Code:    http.StatusInternalServerError,
	})
}
