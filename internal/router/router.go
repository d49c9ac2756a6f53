package router // package router builds the Echo instance and registers every route

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tutor-accounts/internal/handler"
	"github.com/iliyamo/tutor-accounts/internal/middleware"
)

// Handlers groups the route handlers New wires up.
type Handlers struct {
	Auth  *handler.AuthHandler
	User  *handler.UserHandler
	OAuth *handler.OAuthHandler
}

// New returns a configured Echo with the global middleware chain (request
// id, request log, panic recovery, CORS), the failure envelope, the request
// validator and all routes.
func New(log logrus.FieldLogger, verifier middleware.AccessVerifier, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	// Any origin may call with credentials; the origin is echoed back.
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOriginFunc:  func(string) (bool, error) { return true, nil },
		AllowCredentials: true,
	}))

	RegisterRoutes(e)
	RegisterAuth(e, h.Auth, h.OAuth, verifier)
	RegisterUser(e, h.User, verifier)
	return e
}

// RegisterRoutes registers routes that do not require authentication:
// the root greeting and the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Hello)
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the /auth endpoints. Register, login, refresh and
// the Google flow are public; change-password and delete-account need a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, o *handler.OAuthHandler, verifier middleware.AccessVerifier) {
	requireAuth := middleware.JWTAuth(verifier)

	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh-token", a.RefreshToken)
	g.POST("/change-password", a.ChangePassword, requireAuth)
	g.DELETE("/delete-account", a.DeleteAccount, requireAuth)

	g.GET("/google", o.Start)
	g.GET("/google/callback", o.Callback)
}

// RegisterUser registers the profile endpoints; all of them need a valid
// access token.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, verifier middleware.AccessVerifier) {
	g := e.Group("/user", middleware.JWTAuth(verifier))
	g.GET("/me", u.Me)
	g.PUT("/update-account-info", u.UpdateAccountInfo)
}
