package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers user routes on the /users group. The literal
// username "me" is an alias for the caller's own profile.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.GET("/:username", h.Get)
	router.PATCH("/:username", h.Update)
	router.DELETE("/:username", h.Delete)
	router.PUT("/:username/role", h.SetRole)
}

// List retrieves the user directory (admin only)
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)

	users, err := h.userService.List(c.Request.Context(), middleware.Actor(c), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// Get retrieves a profile; "me" resolves to the caller
// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	actor := middleware.Actor(c)

	var (
		user *dto.UserResponse
		err  error
	)
	if username := c.Param("username"); username == "me" {
		user, err = h.userService.GetMe(c.Request.Context(), actor)
	} else {
		user, err = h.userService.GetProfile(c.Request.Context(), actor, username)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update edits a profile; "me" resolves to the caller
// PATCH /api/v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.Actor(c)

	var (
		user *dto.UserResponse
		err  error
	)
	if username := c.Param("username"); username == "me" {
		user, err = h.userService.UpdateMe(c.Request.Context(), actor, req)
	} else {
		user, err = h.userService.UpdateProfile(c.Request.Context(), actor, username, req)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete removes an account (admin only)
// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), middleware.Actor(c), c.Param("username")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetRole changes a user's role tag (admin only)
// PUT /api/v1/users/:username/role
func (h *UserHandler) SetRole(c *gin.Context) {
	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.SetRole(c.Request.Context(), middleware.Actor(c), c.Param("username"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
