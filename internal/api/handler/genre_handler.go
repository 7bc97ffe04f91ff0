package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/service"
)

type GenreHandler struct {
	genreService service.GenreService
}

func NewGenreHandler(genreService service.GenreService) *GenreHandler {
	return &GenreHandler{genreService: genreService}
}

// RegisterRoutes registers genre routes on the /genres group
func (h *GenreHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.POST("", h.Create)
	router.GET("/:slug", h.Get)
	router.PATCH("/:slug", h.Update)
	router.DELETE("/:slug", h.Delete)
}

// List retrieves all genres
// GET /api/v1/genres
func (h *GenreHandler) List(c *gin.Context) {
	genres, err := h.genreService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, genres)
}

// Get retrieves a single genre by slug
// GET /api/v1/genres/:slug
func (h *GenreHandler) Get(c *gin.Context) {
	genre, err := h.genreService.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, genre)
}

// Create adds a genre (admin only)
// POST /api/v1/genres
func (h *GenreHandler) Create(c *gin.Context) {
	var req dto.SlugEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genre := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := h.genreService.Create(c.Request.Context(), middleware.Actor(c), genre); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, genre)
}

// Update renames or re-slugs a genre (admin only)
// PATCH /api/v1/genres/:slug
func (h *GenreHandler) Update(c *gin.Context) {
	var req dto.SlugEntryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genre, err := h.genreService.Update(c.Request.Context(), middleware.Actor(c), c.Param("slug"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, genre)
}

// Delete removes a genre and its title associations
// DELETE /api/v1/genres/:slug
func (h *GenreHandler) Delete(c *gin.Context) {
	if err := h.genreService.Delete(c.Request.Context(), middleware.Actor(c), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
