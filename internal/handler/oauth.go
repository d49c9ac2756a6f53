package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tutor-accounts/internal/apperr"
	"github.com/iliyamo/tutor-accounts/internal/oauth"
	"github.com/iliyamo/tutor-accounts/internal/service"
)

const (
	stateCookie    = "oauth_state"
	stateCookieTTL = 10 * time.Minute
	msgOAuthState  = "Google sign-in could not be verified. Please try again."
)

// GoogleClient is satisfied by *oauth.Google.
type GoogleClient interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (oauth.Profile, error)
}

// OAuthHandler runs the browser side of Google sign-in. Both outcomes end
// in a redirect to <FrontendURL>/oauth-callback carrying either a
// "response" or an "error" query parameter with a JSON value.
type OAuthHandler struct {
	Google       GoogleClient
	Auth         AuthService
	FrontendURL  string
	SecureCookie bool
	Log          logrus.FieldLogger
}

// Start sets a state cookie and sends the browser to Google.
func (h *OAuthHandler) Start(c echo.Context) error {
	state := oauth.NewState()
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, h.Google.AuthURL(state))
}

// Callback finishes the flow started by Start.
func (h *OAuthHandler) Callback(c echo.Context) error {
	expected, _ := c.Cookie(stateCookie)
	c.SetCookie(&http.Cookie{Name: stateCookie, Value: "", Path: "/auth/google", MaxAge: -1, HttpOnly: true, Secure: h.SecureCookie})

	if reason := c.QueryParam("error"); reason != "" {
		return h.fail(c, apperr.Unauthorized(msgOAuthState), "provider returned "+reason)
	}
	if expected == nil || expected.Value == "" || c.QueryParam("state") != expected.Value {
		return h.fail(c, apperr.Unauthorized(msgOAuthState), "state mismatch")
	}
	code := c.QueryParam("code")
	if code == "" {
		return h.fail(c, apperr.BadRequest("Missing authorization code"), "missing code")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	profile, err := h.Google.Exchange(ctx, code)
	if err != nil {
		return h.fail(c, err, "code exchange failed")
	}
	res, err := h.Auth.HandleOAuthLogin(ctx, service.OAuthProfile{
		GoogleID: profile.Sub,
		Email:    profile.Email,
		Name:     profile.FullName(),
	})
	if err != nil {
		return h.fail(c, err, "oauth login failed")
	}

	body, err := json.Marshal(res)
	if err != nil {
		return h.fail(c, err, "encode response failed")
	}
	return c.Redirect(http.StatusFound, h.callbackURL("response", string(body)))
}

// fail redirects with {"error": message}. Non-API errors get the generic
// message; their text only goes to the log.
func (h *OAuthHandler) fail(c echo.Context, err error, reason string) error {
	msg := apperr.DefaultMessage(apperr.CodeInternalServerError)
	if ae, ok := apperr.As(err); ok {
		msg = ae.Message
	}
	if h.Log != nil {
		h.Log.WithError(err).WithField("reason", reason).Warn("google sign-in failed")
	}
	body, _ := json.Marshal(map[string]string{"error": msg})
	return c.Redirect(http.StatusFound, h.callbackURL("error", string(body)))
}

func (h *OAuthHandler) callbackURL(key, value string) string {
	return strings.TrimRight(h.FrontendURL, "/") + "/oauth-callback?" + url.Values{key: {value}}.Encode()
}
