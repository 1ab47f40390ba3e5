package user

import (
	"errors"
	"net/http"
	"strconv"

	"gymdesk/internal/api"
	"gymdesk/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Register a member account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body user.RegisterRequest true "Registration payload"
// @Success      201 {object} api.Response
// @Failure      400 {object} api.Response
// @Failure      409 {object} api.Response
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, accessToken, refreshToken, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			api.Fail(c, http.StatusConflict, "Email already registered")
			return
		}
		api.Fail(c, http.StatusInternalServerError, "Failed to register")
		return
	}

	api.OK(c, http.StatusCreated, AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body user.LoginRequest true "Credentials"
// @Success      200 {object} api.Response
// @Failure      401 {object} api.Response
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, accessToken, refreshToken, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	api.OK(c, http.StatusOK, AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body user.RefreshRequest true "Refresh token"
// @Success      200 {object} api.Response
// @Failure      401 {object} api.Response
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, user, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		api.Fail(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	api.OK(c, http.StatusOK, gin.H{
		"access_token": accessToken,
		"user":         user,
	})
}

// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.Response
// @Failure      401 {object} api.Response
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, http.StatusNotFound, "User not found")
		return
	}

	api.OK(c, http.StatusOK, user)
}

// @Summary      List users
// @Description  Admin-only: list users, optionally filtered by role
// @Tags         admin,users
// @Produce      json
// @Security     BearerAuth
// @Param        role query string false "Role filter (admin|coach|member)"
// @Success      200 {object} api.Response
// @Router       /admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	role := c.Query("role")

	users, err := h.service.ListByRole(c.Request.Context(), role)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	api.OK(c, http.StatusOK, users)
}

// @Summary      Create a user
// @Description  Admin-only: create a user with any role
// @Tags         admin,users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body user.CreateUserRequest true "User payload"
// @Success      201 {object} api.Response
// @Failure      400 {object} api.Response
// @Failure      409 {object} api.Response
// @Router       /admin/users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			api.Fail(c, http.StatusConflict, "Email already registered")
			return
		}
		api.Fail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	api.Message(c, http.StatusCreated, user, "User created successfully")
}

// @Summary      Get a user
// @Tags         admin,users
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /admin/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, http.StatusNotFound, "User not found")
		return
	}

	api.OK(c, http.StatusOK, user)
}

// @Summary      Delete a user
// @Tags         admin,users
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /admin/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			api.Fail(c, http.StatusNotFound, "User not found")
			return
		}
		api.Fail(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	api.Message(c, http.StatusOK, nil, "User deleted successfully")
}
