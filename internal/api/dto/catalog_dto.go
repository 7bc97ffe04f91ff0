package dto

// SlugEntryRequest for creating categories and genres
type SlugEntryRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// SlugEntryUpdateRequest for partially updating a category or genre.
// Omitted fields keep their stored values.
type SlugEntryUpdateRequest struct {
	Name *string `json:"name,omitempty"`
	Slug *string `json:"slug,omitempty"`
}
