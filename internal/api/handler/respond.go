package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/api/service"
)

// respondError maps service sentinels onto HTTP statuses:
// validation -> 400, unauthenticated -> 401, forbidden -> 403,
// missing resource -> 404.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScoreOutOfRange),
		errors.Is(err, service.ErrDuplicateReview),
		errors.Is(err, service.ErrUnknownGenre),
		errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrYearInFuture),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrSlugRequired),
		errors.Is(err, service.ErrTextRequired),
		errors.Is(err, service.ErrUnknownRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrExpiredToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrGenreNotFound),
		errors.Is(err, service.ErrTitleNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrNameInUse),
		errors.Is(err, service.ErrEmailInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
