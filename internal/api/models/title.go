package models

import "time"

type Title struct {
	ID          int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string   `json:"name" gorm:"not null"`
	Year        *int     `json:"year,omitempty"`
	Description string   `json:"description" gorm:"type:text"`
	Rating      *float64 `json:"rating" gorm:"type:decimal(4,2)"` // derived mean of review scores, null when no reviews exist
	CategoryID  *int64   `json:"category_id,omitempty" gorm:"index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
