package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tutor-accounts/internal/apperr"
	"github.com/iliyamo/tutor-accounts/internal/model"
	"github.com/iliyamo/tutor-accounts/internal/oauth"
)

func newOAuthEcho(h *OAuthHandler) *echo.Echo {
	e := echo.New()
	e.GET("/auth/google", h.Start)
	e.GET("/auth/google/callback", h.Callback)
	return e
}

func newOAuthHandler(auth *stubAuth, google *stubGoogle) *OAuthHandler {
	logger, _ := test.NewNullLogger()
	return &OAuthHandler{Google: google, Auth: auth, FrontendURL: "http://app.example.com/", Log: logger}
}

// callback runs the callback with a matching state cookie and returns the
// decoded redirect query.
func callback(t *testing.T, e *echo.Echo, query string, cookieState string) url.Values {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?"+query, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: cookieState})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
	require.NoError(t, err)
	assert.Equal(t, "app.example.com", loc.Host)
	assert.Equal(t, "/oauth-callback", loc.Path)
	return loc.Query()
}

func TestOAuthStartSetsStateCookie(t *testing.T) {
	e := newOAuthEcho(newOAuthHandler(&stubAuth{}, &stubGoogle{}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, stateCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)

	loc, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
	require.NoError(t, err)
	assert.Equal(t, cookies[0].Value, loc.Query().Get("state"))
}

func TestOAuthCallbackSuccess(t *testing.T) {
	auth := &stubAuth{result: model.AuthResult{
		User:      model.PublicUser{ID: 7, Email: "grace@example.com", IsOAuthUser: true},
		TokenPair: model.TokenPair{AccessToken: "a", RefreshToken: "r"},
	}}
	google := &stubGoogle{profile: oauth.Profile{Sub: "sub-1", Email: "grace@example.com", GivenName: "Grace", FamilyName: "Hopper"}}
	e := newOAuthEcho(newOAuthHandler(auth, google))

	q := callback(t, e, "code=c0de&state=s1", "s1")
	require.NotEmpty(t, q.Get("response"))
	assert.Empty(t, q.Get("error"))

	var res model.AuthResult
	require.NoError(t, json.Unmarshal([]byte(q.Get("response")), &res))
	assert.Equal(t, int64(7), res.User.ID)
	assert.Equal(t, "a", res.AccessToken)

	assert.Equal(t, "sub-1", auth.oauthIn.GoogleID)
	assert.Equal(t, "Grace Hopper", auth.oauthIn.Name)
}

func errorMessage(t *testing.T, q url.Values) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(q.Get("error")), &body))
	return body["error"]
}

func TestOAuthCallbackStateMismatch(t *testing.T) {
	auth := &stubAuth{}
	e := newOAuthEcho(newOAuthHandler(auth, &stubGoogle{}))

	q := callback(t, e, "code=c0de&state=forged", "s1")
	assert.Equal(t, msgOAuthState, errorMessage(t, q))

	q = callback(t, e, "code=c0de&state=s1", "")
	assert.Equal(t, msgOAuthState, errorMessage(t, q))
	assert.Empty(t, auth.oauthIn.Email)
}

func TestOAuthCallbackServiceRejection(t *testing.T) {
	auth := &stubAuth{err: apperr.Forbidden("Your email is registered with a manual signup. Please sign in using your email and password to continue.")}
	google := &stubGoogle{profile: oauth.Profile{Sub: "sub-1", Email: "ada@example.com"}}
	e := newOAuthEcho(newOAuthHandler(auth, google))

	q := callback(t, e, "code=c0de&state=s1", "s1")
	assert.Contains(t, errorMessage(t, q), "manual signup")
}

func TestOAuthCallbackExchangeFailureIsGeneric(t *testing.T) {
	google := &stubGoogle{err: errors.New("oauth2: server response: invalid_grant secret-detail")}
	e := newOAuthEcho(newOAuthHandler(&stubAuth{}, google))

	q := callback(t, e, "code=c0de&state=s1", "s1")
	msg := errorMessage(t, q)
	assert.Equal(t, apperr.DefaultMessage(apperr.CodeInternalServerError), msg)
	assert.NotContains(t, msg, "secret-detail")
}
