package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tutor-accounts/internal/middleware"
	"github.com/iliyamo/tutor-accounts/internal/model"
)

// UserService is satisfied by *service.UserService.
type UserService interface {
	GetUser(ctx context.Context, userID int64) (model.PublicUser, error)
	UpdateAccountInfo(ctx context.Context, userID int64, name string) (model.PublicUser, error)
}

// UserHandler serves /user; every route requires JWTAuth.
type UserHandler struct {
	Users UserService
}

func NewUserHandler(u UserService) *UserHandler { return &UserHandler{Users: u} }

type updateAccountReq struct {
	Name string `json:"name" validate:"required,min=2"`
}

// Me returns the caller's profile.
func (h *UserHandler) Me(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetUser(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, u)
}

// UpdateAccountInfo changes the caller's display name.
func (h *UserHandler) UpdateAccountInfo(c echo.Context) error {
	var req updateAccountReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.UpdateAccountInfo(ctx, middleware.UserID(c), req.Name)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, u)
}
