package middleware // reusable echo middleware: bearer auth and request logging

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tutor-accounts/internal/apperr"
	"github.com/iliyamo/tutor-accounts/internal/utils"
)

// AccessVerifier is satisfied by *utils.TokenIssuer.
type AccessVerifier interface {
	VerifyAccess(token string) (*utils.Claims, error)
}

// JWTAuth returns an Echo middleware that requires a valid Bearer access
// token. The verified claims are stored in the context under claimsKey and
// read back with CurrentUser. Missing, malformed, forged and expired tokens
// all end in the same 401; the reason is not disclosed.
func JWTAuth(v AccessVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return apperr.Unauthorized("")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := v.VerifyAccess(raw)
			if err != nil {
				return apperr.Unauthorized("")
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}
