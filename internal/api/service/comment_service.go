package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/policy"
	"reviewhub/internal/api/repository"
)

type CommentService interface {
	CreateComment(ctx context.Context, actor policy.Actor, titleID, reviewID int64, text string) (*dto.CommentResponse, error)
	UpdateComment(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64, text string) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error
	GetReviewComments(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

// CreateComment attaches a comment to an existing review.
func (s *commentService) CreateComment(ctx context.Context, actor policy.Actor, titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	if d := policy.Decide(actor, policy.ActionCreate, policy.Resource{Kind: policy.KindComment}); !d.Allowed {
		return nil, denialError(d)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextRequired
	}

	if _, err := s.getTitleReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		AuthorID: actor.ID,
		ReviewID: reviewID,
		Text:     text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// reload with author data
	comment, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) UpdateComment(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64, text string) (*dto.CommentResponse, error) {
	comment, err := s.getReviewComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if d := policy.Decide(actor, policy.ActionUpdate, policy.Resource{Kind: policy.KindComment, OwnerID: comment.AuthorID}); !d.Allowed {
		return nil, denialError(d)
	}

	comment.Text = text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	comment, err = s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) DeleteComment(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error {
	comment, err := s.getReviewComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if d := policy.Decide(actor, policy.ActionDelete, policy.Resource{Kind: policy.KindComment, OwnerID: comment.AuthorID}); !d.Allowed {
		return denialError(d)
	}

	// the comment can vanish between the check above and this delete
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}

// GetReviewComments retrieves comments under a review, newest first
func (s *commentService) GetReviewComments(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error) {
	if _, err := s.getTitleReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.GetByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}

	commentResponses := make([]dto.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		commentResponses = append(commentResponses, *dto.FromModelToCommentResponse(&comment))
	}

	return dto.NewPaginatedCommentResponse(commentResponses, int(total), page, pageSize), nil
}

// getTitleReview loads the parent review and makes sure it belongs to the
// title in the request path.
func (s *commentService) getTitleReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
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

// getReviewComment loads a comment and makes sure the whole path chain
// (title -> review -> comment) is consistent.
func (s *commentService) getReviewComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.getTitleReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.ReviewID != reviewID {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}
