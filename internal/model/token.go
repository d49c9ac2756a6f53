package model

// TokenPair is returned on every successful sign-in and refresh. The
// expiry timestamps are epoch milliseconds computed from the same instant
// used to sign the tokens.
type TokenPair struct {
	AccessToken           string `json:"accessToken"`
	RefreshToken          string `json:"refreshToken"`
	AccessTokenExpiresAt  int64  `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt int64  `json:"refreshTokenExpiresAt"`
}

// AuthResult is the body of register, login and OAuth sign-in responses.
// The token fields are flattened next to the user.
type AuthResult struct {
	User PublicUser `json:"user"`
	TokenPair
}

// Message is a plain confirmation payload.
type Message struct {
	Message string `json:"message"`
}
