package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tutor-accounts/internal/utils"
)

const claimsKey = "auth.claims"

// CurrentUser returns the claims JWTAuth stored for this request. ok is
// false on routes that are not behind JWTAuth.
func CurrentUser(c echo.Context) (*utils.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*utils.Claims)
	return claims, ok && claims != nil
}

// UserID is CurrentUser's id, or 0 when unauthenticated.
func UserID(c echo.Context) int64 {
	if claims, ok := CurrentUser(c); ok {
		return claims.ID
	}
	return 0
}
