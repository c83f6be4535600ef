package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickserve/pos-system/internal/api/metrics"
	"github.com/quickserve/pos-system/internal/core/domain"
	"github.com/quickserve/pos-system/internal/core/ports"
)

// UserHandler exposes user lifecycle operations. Routes mounting it are
// gated on the manage-users capability, except the active-users view.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type registerUserRequest struct {
	Username    string `json:"username"     validate:"required"`
	Password    string `json:"password"     validate:"required,min=4"`
	DisplayName string `json:"display_name" validate:"required"`
	Email       string `json:"email"        validate:"omitempty,email"`
	Role        string `json:"role"         validate:"omitempty,oneof=admin cashier kitchen"`
}

type updateUserRequest struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"    validate:"omitempty,email"`
	Role        *string `json:"role"     validate:"omitempty,oneof=admin cashier kitchen"`
	Password    *string `json:"password" validate:"omitempty,min=4"`
}

type userListResponse struct {
	Users []*domain.User `json:"users"`
	Total int            `json:"total"`
}

// List returns every account, newest first, inactive ones included.
//
// @Summary      List all users (admin view)
// @Tags         users
// @Produce      json
// @Success      200  {object}  userListResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	// serve persisted state, not whatever the cache last saw
	if err := h.users.Reload(c.Request().Context()); err != nil {
		return err
	}
	users := h.users.AllUsers()
	return c.JSON(http.StatusOK, userListResponse{Users: users, Total: len(users)})
}

// ListActive returns the active accounts only (general UI view).
//
// @Summary      List active users
// @Tags         users
// @Produce      json
// @Success      200  {object}  userListResponse
// @Router       /users/active [get]
func (h *UserHandler) ListActive(c echo.Context) error {
	users := h.users.ActiveUsers()
	return c.JSON(http.StatusOK, userListResponse{Users: users, Total: len(users)})
}

// Register creates a new operator account.
//
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerUserRequest  true  "New user details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.users.Register(c.Request().Context(), ports.RegisterUserInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Role:        domain.Role(req.Role),
	})
	if err != nil {
		return err
	}

	metrics.UserMutationsTotal.WithLabelValues("register").Inc()
	return c.JSON(http.StatusCreated, created)
}

// Update applies a partial update to an account.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      404   {object}  map[string]string
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := ports.UpdateUserInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}

	updated, err := h.users.Update(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}

	metrics.UserMutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, updated)
}

// Deactivate soft-disables an account.
//
// @Summary      Deactivate a user
// @Tags         users
// @Param        id  path  string  true  "User id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c echo.Context) error {
	if err := h.users.Deactivate(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.UserMutationsTotal.WithLabelValues("deactivate").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Reactivate re-enables a soft-disabled account.
//
// @Summary      Reactivate a user
// @Tags         users
// @Param        id  path  string  true  "User id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /users/{id}/reactivate [post]
func (h *UserHandler) Reactivate(c echo.Context) error {
	if err := h.users.Reactivate(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.UserMutationsTotal.WithLabelValues("reactivate").Inc()
	return c.NoContent(http.StatusNoContent)
}
