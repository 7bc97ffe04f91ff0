package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/policy"
	"reviewhub/internal/api/repository"
)

type ReviewService interface {
	CreateReview(ctx context.Context, actor policy.Actor, titleID int64, score int, text string) (*dto.ReviewResponse, error)
	UpdateReview(ctx context.Context, actor policy.Actor, titleID, reviewID int64, score int, text string) (*dto.ReviewResponse, error)
	DeleteReview(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error
	GetReview(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	GetTitleReviews(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error)
	GetTitleRating(ctx context.Context, titleID int64) (*dto.TitleRatingResponse, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

// CreateReview validates the score, enforces one review per (author, title)
// and writes the review together with the recomputed title rating.
func (s *reviewService) CreateReview(ctx context.Context, actor policy.Actor, titleID int64, score int, text string) (*dto.ReviewResponse, error) {
	if d := policy.Decide(actor, policy.ActionCreate, policy.Resource{Kind: policy.KindReview}); !d.Allowed {
		return nil, denialError(d)
	}
	if score < 1 || score > 10 {
		return nil, ErrScoreOutOfRange
	}

	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	// cheap pre-check; the unique index still catches racing inserts
	if _, err := s.reviewRepo.GetByAuthorAndTitle(ctx, actor.ID, titleID); err == nil {
		return nil, ErrDuplicateReview
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		AuthorID: actor.ID,
		TitleID:  titleID,
		Score:    score,
		Text:     text,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	// reload with author data
	review, err := s.reviewRepo.GetByID(ctx, review.ID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToReviewResponse(review), nil
}

// UpdateReview lets the author, a moderator or an admin change score and
// text; created_at stays untouched and the rating is recomputed.
func (s *reviewService) UpdateReview(ctx context.Context, actor policy.Actor, titleID, reviewID int64, score int, text string) (*dto.ReviewResponse, error) {
	review, err := s.getTitleReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if d := policy.Decide(actor, policy.ActionUpdate, policy.Resource{Kind: policy.KindReview, OwnerID: review.AuthorID}); !d.Allowed {
		return nil, denialError(d)
	}
	if score < 1 || score > 10 {
		return nil, ErrScoreOutOfRange
	}

	review.Score = score
	review.Text = text
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	review, err = s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error {
	review, err := s.getTitleReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}

	if d := policy.Decide(actor, policy.ActionDelete, policy.Resource{Kind: policy.KindReview, OwnerID: review.AuthorID}); !d.Allowed {
		return denialError(d)
	}

	return s.reviewRepo.Delete(ctx, reviewID)
}

func (s *reviewService) GetReview(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.getTitleReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

// GetTitleReviews retrieves reviews for a title, newest first
func (s *reviewService) GetTitleReviews(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	reviews, total, err := s.reviewRepo.GetByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	reviewResponses := make([]dto.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		reviewResponses = append(reviewResponses, *dto.FromModelToReviewResponse(&review))
	}

	return dto.NewPaginatedReviewResponse(reviewResponses, int(total), page, pageSize), nil
}

// GetTitleRating reports the stored aggregate together with the number of
// reviews behind it.
func (s *reviewService) GetTitleRating(ctx context.Context, titleID int64) (*dto.TitleRatingResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, titleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	count, err := s.reviewRepo.CountByTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}

	return &dto.TitleRatingResponse{
		TitleID: titleID,
		Rating:  title.Rating,
		Count:   count,
	}, nil
}

// getTitleReview loads a review and makes sure it belongs to the title in
// the request path.
func (s *reviewService) getTitleReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.TitleID != titleID {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

// denialError maps a policy decision to the matching sentinel.
func denialError(d policy.Decision) error {
	if d.Reason == policy.ReasonUnauthenticated {
		return ErrUnauthenticated
	}
	return ErrForbidden
}
