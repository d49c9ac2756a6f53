package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tutor-accounts/internal/apperr"
)

// requestTimeout bounds the store work behind one request.
const requestTimeout = 5 * time.Second

type successBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorPart struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
	Details any         `json:"details"`
}

type errorBody struct {
	Success bool      `json:"success"`
	Error   errorPart `json:"error"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, successBody{Success: true, Data: data})
}

func writeError(c echo.Context, e *apperr.Error) error {
	return c.JSON(e.Status(), errorBody{Error: errorPart{Code: e.Code, Message: e.Message, Details: e.Details}})
}

// bind decodes the JSON body into req and validates it. A body that is not
// valid JSON for req is BAD_REQUEST; a decodable body that breaks a rule is
// VALIDATION_ERROR.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.BadRequest("Request body must be valid JSON")
	}
	return c.Validate(req)
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}
