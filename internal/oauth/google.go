// Package oauth wraps the Google authorization code flow.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// ErrNoEmail is returned when Google does not share a verified address.
var ErrNoEmail = errors.New("oauth: google profile has no email")

// Profile is the subset of Google's userinfo response the service uses.
type Profile struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// FullName joins given and family name, skipping empty parts.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.GivenName + " " + p.FamilyName)
}

// Google drives the consent redirect and the code exchange.
type Google struct {
	conf        *oauth2.Config
	userinfoURL string
}

// NewGoogle builds a client whose callback is <backendURL>/auth/google/callback.
func NewGoogle(clientID, clientSecret, backendURL string) *Google {
	return &Google{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  strings.TrimRight(backendURL, "/") + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
		},
		userinfoURL: googleUserinfoURL,
	}
}

// NewState returns a random value for the state parameter.
func NewState() string { return uuid.NewString() }

// AuthURL is the consent page the browser is sent to.
func (g *Google) AuthURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades the authorization code for a token and fetches the
// user's profile with it.
func (g *Google) Exchange(ctx context.Context, code string) (Profile, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("oauth: code exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return Profile{}, err
	}
	resp, err := g.conf.Client(ctx, tok).Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("oauth: userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("oauth: userinfo: unexpected status %d", resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("oauth: decode userinfo: %w", err)
	}
	if p.Email == "" {
		return Profile{}, ErrNoEmail
	}
	return p, nil
}
