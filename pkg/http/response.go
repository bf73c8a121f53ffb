package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SuccessResponse writes the payload with a 200 status.
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// BadRequestResponse writes a 400 with validation details.
func BadRequestResponse(c echo.Context, details interface{}) error {
	return c.JSON(http.StatusBadRequest, ErrorBody{Error: "bad request", Details: details})
}

// NotFoundResponse writes a 404 error body.
func NotFoundResponse(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, ErrorBody{Error: msg})
}

// UpstreamErrorResponse writes a 502 for failures of external collaborators.
func UpstreamErrorResponse(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadGateway, ErrorBody{Error: msg})
}

// ErrorBody is the explicit error payload single-item endpoints return instead
// of a partial score.
type ErrorBody struct {
	Error   string      `json:"error"`
	Symbol  string      `json:"symbol,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
