package dto

import (
	"reviewhub/internal/api/models"
)

// TitleRequest for creating or updating a title. Category and genres are
// referenced by slug and must already exist.
type TitleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Year        *int     `json:"year,omitempty"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Genres      []string `json:"genres,omitempty"`
}

// TitleResponse for returning title information with the derived rating
type TitleResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Year        *int             `json:"year,omitempty"`
	Description string           `json:"description"`
	Rating      *float64         `json:"rating"`
	Category    *models.Category `json:"category,omitempty"`
	Genres      []models.Genre   `json:"genres"`
}

// FromModelToTitleResponse converts a Title model to TitleResponse DTO
func FromModelToTitleResponse(title *models.Title) *TitleResponse {
	genres := title.Genres
	if genres == nil {
		genres = []models.Genre{}
	}
	return &TitleResponse{
		ID:          title.ID,
		Name:        title.Name,
		Year:        title.Year,
		Description: title.Description,
		Rating:      title.Rating,
		Category:    title.Category,
		Genres:      genres,
	}
}

// PaginatedTitleResponse for returning paginated titles
type PaginatedTitleResponse struct {
	Data       []TitleResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// NewPaginatedTitleResponse creates a paginated title response
func NewPaginatedTitleResponse(data []TitleResponse, total, page, pageSize int) *PaginatedTitleResponse {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &PaginatedTitleResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
