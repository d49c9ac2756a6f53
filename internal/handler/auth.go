package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tutor-accounts/internal/middleware"
	"github.com/iliyamo/tutor-accounts/internal/model"
	"github.com/iliyamo/tutor-accounts/internal/service"
)

// AuthService is satisfied by *service.AuthService.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (model.AuthResult, error)
	Login(ctx context.Context, email, password string) (model.AuthResult, error)
	HandleOAuthLogin(ctx context.Context, p service.OAuthProfile) (model.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	ChangePassword(ctx context.Context, userID int64, newPassword string) (model.Message, error)
	DeleteAccount(ctx context.Context, userID int64) (model.Message, error)
}

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	Auth AuthService
}

func NewAuthHandler(a AuthService) *AuthHandler { return &AuthHandler{Auth: a} }

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// loginReq keeps the form-style "username" key; it carries the email.
type loginReq struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type changePasswordReq struct {
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// Register: create a password account and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Auth.Register(ctx, service.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, res)
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, res)
}

// RefreshToken: exchange a refresh token for a new pair.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, pair)
}

// ChangePassword requires JWTAuth.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := h.Auth.ChangePassword(ctx, middleware.UserID(c), req.NewPassword)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, msg)
}

// DeleteAccount requires JWTAuth.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := h.Auth.DeleteAccount(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, msg)
}
