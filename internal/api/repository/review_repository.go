package repository

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"reviewhub/internal/api/models"
)

// ErrDuplicateReview means the (author, title) pair already has a review.
// Surfaced both by the pre-insert check in the service layer and by the
// unique index when two inserts race.
var ErrDuplicateReview = errors.New("duplicate review")

const pgUniqueViolation = "23505"

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, reviewID int64) error
	GetByID(ctx context.Context, reviewID int64) (*models.Review, error)
	GetByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (*models.Review, error)
	GetByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	CountByTitle(ctx context.Context, titleID int64) (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts the review and recomputes the title rating in one
// transaction, so no reader observes the review without the updated
// aggregate.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateReview
			}
			return err
		}
		return recomputeTitleRating(tx, review.TitleID)
	})
}

// Update saves the review and recomputes the title rating in one transaction.
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(review).Error; err != nil {
			return err
		}
		return recomputeTitleRating(tx, review.TitleID)
	})
}

// Delete removes the review and recomputes the title rating in one
// transaction.
func (r *reviewRepository) Delete(ctx context.Context, reviewID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Review{}, reviewID).Error; err != nil {
			return err
		}
		return recomputeTitleRating(tx, review.TitleID)
	})
}

func (r *reviewRepository) GetByID(ctx context.Context, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Preload("Author").
		First(&review, reviewID).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND title_id = ?", authorID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByTitle retrieves reviews for a title, newest first, with pagination
func (r *reviewRepository) GetByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Where("title_id = ?", titleID).
		Preload("Author").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) CountByTitle(ctx context.Context, titleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("title_id = ?", titleID).
		Count(&count).Error
	return count, err
}

// recomputeTitleRating rewrites titles.rating from the review rows visible
// inside tx. The AVG re-queries current state, so two concurrent review
// writes for the same title cannot publish a stale aggregate. An empty
// review set stores NULL, not zero.
func recomputeTitleRating(tx *gorm.DB, titleID int64) error {
	var avg sql.NullFloat64
	err := tx.Model(&models.Review{}).
		Select("AVG(score)").
		Where("title_id = ?", titleID).
		Scan(&avg).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.Title{}).
		Where("id = ?", titleID).
		Update("rating", ratingFromAverage(avg)).Error
}

// ratingFromAverage projects the AVG(score) aggregate onto the stored
// rating: NULL while the title has no reviews, otherwise the mean rounded
// to two decimals.
func ratingFromAverage(avg sql.NullFloat64) *float64 {
	if !avg.Valid {
		return nil
	}
	rounded := RoundRating(avg.Float64)
	return &rounded
}

// RoundRating rounds a mean score to two decimal places, half away from zero.
func RoundRating(mean float64) float64 {
	return math.Round(mean*100) / 100
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
