package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tutor-accounts/internal/apperr"
)

// ErrorHandler renders every error returned by a handler or middleware in
// the failure envelope. Only *apperr.Error messages reach the client;
// anything else is logged and answered with the generic internal error.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		e, ok := apperr.As(err)
		if !ok {
			e = fromEcho(err)
		}
		if e.Code == apperr.CodeInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Error("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(e.Status())
		} else {
			err = writeError(c, e)
		}
		if err != nil {
			log.WithError(err).Warn("failed to write error response")
		}
	}
}

// fromEcho maps router-level errors (unknown route, wrong method, oversized
// body) onto the taxonomy. Everything else is internal.
func fromEcho(err error) *apperr.Error {
	he, ok := err.(*echo.HTTPError)
	if !ok {
		return apperr.Internal()
	}
	switch he.Code {
	case http.StatusNotFound:
		return apperr.NotFound("")
	case http.StatusUnauthorized:
		return apperr.Unauthorized("")
	case http.StatusForbidden:
		return apperr.Forbidden("")
	case http.StatusMethodNotAllowed, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType, http.StatusBadRequest:
		return apperr.BadRequest(http.StatusText(he.Code))
	default:
		return apperr.Internal()
	}
}
