package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewhub/internal/api/models"
	"reviewhub/internal/api/policy"
	"reviewhub/internal/api/repository"
)

// MockReviewRepository mocks the ReviewRepository interface
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, reviewID int64) error {
	args := m.Called(ctx, reviewID)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (*models.Review, error) {
	args := m.Called(ctx, authorID, titleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) CountByTitle(ctx context.Context, titleID int64) (int64, error) {
	args := m.Called(ctx, titleID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTitleRepository mocks the TitleRepository interface
type MockTitleRepository struct {
	mock.Mock
}

func (m *MockTitleRepository) GetAll(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleRepository) Create(ctx context.Context, t *models.Title) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTitleRepository) Update(ctx context.Context, id int64, t *models.Title) error {
	args := m.Called(ctx, id, t)
	return args.Error(0)
}

func (m *MockTitleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func userActor(id string) policy.Actor {
	return policy.Actor{ID: id, Role: models.RoleUser}
}

func TestCreateReview_Success(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Dune"}, nil)
	mockReviewRepo.On("GetByAuthorAndTitle", mock.Anything, "u1", int64(1)).Return(nil, gorm.ErrRecordNotFound)
	mockReviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Review")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Review).ID = 42
	}).Return(nil)
	mockReviewRepo.On("GetByID", mock.Anything, int64(42)).Return(&models.Review{
		ID: 42, AuthorID: "u1", TitleID: 1, Score: 8, Text: "great",
		Author: models.User{Username: "alice"},
	}, nil)

	review, err := svc.CreateReview(context.Background(), userActor("u1"), 1, 8, "great")

	assert.NoError(t, err)
	assert.Equal(t, int64(42), review.ID)
	assert.Equal(t, "alice", review.Author)
	assert.Equal(t, 8, review.Score)
	mockReviewRepo.AssertExpectations(t)
}

func TestCreateReview_Anonymous(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	_, err := svc.CreateReview(context.Background(), policy.Actor{}, 1, 8, "great")

	assert.Equal(t, ErrUnauthenticated, err)
	mockReviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_ScoreBounds(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	for _, score := range []int{0, 11, -1, 100} {
		_, err := svc.CreateReview(context.Background(), userActor("u1"), 1, score, "text")
		assert.Equal(t, ErrScoreOutOfRange, err, "score %d", score)
	}

	// 1 and 10 pass validation and reach the title lookup
	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, gorm.ErrRecordNotFound)
	for _, score := range []int{1, 10} {
		_, err := svc.CreateReview(context.Background(), userActor("u1"), 1, score, "text")
		assert.Equal(t, ErrTitleNotFound, err, "score %d", score)
	}
}

func TestCreateReview_UnknownTitle(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.CreateReview(context.Background(), userActor("u1"), 99, 5, "text")

	assert.Equal(t, ErrTitleNotFound, err)
}

func TestCreateReview_Duplicate(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	mockReviewRepo.On("GetByAuthorAndTitle", mock.Anything, "u1", int64(1)).Return(&models.Review{ID: 7, AuthorID: "u1", TitleID: 1}, nil)

	_, err := svc.CreateReview(context.Background(), userActor("u1"), 1, 5, "again")

	assert.Equal(t, ErrDuplicateReview, err)
	mockReviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_DuplicateRace(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	// pre-check misses but the unique index rejects the insert
	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	mockReviewRepo.On("GetByAuthorAndTitle", mock.Anything, "u1", int64(1)).Return(nil, gorm.ErrRecordNotFound)
	mockReviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Review")).Return(repository.ErrDuplicateReview)

	_, err := svc.CreateReview(context.Background(), userActor("u1"), 1, 5, "again")

	assert.Equal(t, ErrDuplicateReview, err)
}

func TestUpdateReview_NonAuthorForbidden(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockReviewRepo.On("GetByID", mock.Anything, int64(42)).Return(&models.Review{ID: 42, AuthorID: "owner", TitleID: 1}, nil)

	_, err := svc.UpdateReview(context.Background(), userActor("someone-else"), 1, 42, 3, "drive-by edit")

	assert.Equal(t, ErrForbidden, err)
	mockReviewRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateReview_ModeratorAllowed(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	stored := &models.Review{ID: 42, AuthorID: "owner", TitleID: 1, Score: 9, Text: "old"}
	mockReviewRepo.On("GetByID", mock.Anything, int64(42)).Return(stored, nil)
	mockReviewRepo.On("Update", mock.Anything, stored).Return(nil)

	moderator := policy.Actor{ID: "m1", Role: models.RoleModerator}
	review, err := svc.UpdateReview(context.Background(), moderator, 1, 42, 2, "toned down")

	assert.NoError(t, err)
	assert.Equal(t, 2, review.Score)
	assert.Equal(t, "toned down", review.Text)
	mockReviewRepo.AssertExpectations(t)
}

func TestUpdateReview_TitleMismatch(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockReviewRepo.On("GetByID", mock.Anything, int64(42)).Return(&models.Review{ID: 42, AuthorID: "u1", TitleID: 7}, nil)

	_, err := svc.UpdateReview(context.Background(), userActor("u1"), 1, 42, 5, "text")

	assert.Equal(t, ErrReviewNotFound, err)
}

func TestDeleteReview_AuthorAllowed(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockReviewRepo.On("GetByID", mock.Anything, int64(42)).Return(&models.Review{ID: 42, AuthorID: "u1", TitleID: 1}, nil)
	mockReviewRepo.On("Delete", mock.Anything, int64(42)).Return(nil)

	err := svc.DeleteReview(context.Background(), userActor("u1"), 1, 42)

	assert.NoError(t, err)
	mockReviewRepo.AssertExpectations(t)
}

func TestDeleteReview_AnonymousUnauthenticated(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockReviewRepo.On("GetByID", mock.Anything, int64(42)).Return(&models.Review{ID: 42, AuthorID: "u1", TitleID: 1}, nil)

	err := svc.DeleteReview(context.Background(), policy.Actor{}, 1, 42)

	assert.Equal(t, ErrUnauthenticated, err)
	mockReviewRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestGetTitleRating(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	rating := 7.33
	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Rating: &rating}, nil)
	mockReviewRepo.On("CountByTitle", mock.Anything, int64(1)).Return(int64(3), nil)

	result, err := svc.GetTitleRating(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, 7.33, *result.Rating)
	assert.Equal(t, int64(3), result.Count)
}

func TestGetTitleRating_NoReviews(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	mockReviewRepo.On("CountByTitle", mock.Anything, int64(1)).Return(int64(0), nil)

	result, err := svc.GetTitleRating(context.Background(), 1)

	assert.NoError(t, err)
	assert.Nil(t, result.Rating)
	assert.Equal(t, int64(0), result.Count)
}

func TestGetTitleReviews(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	mockReviewRepo.On("GetByTitle", mock.Anything, int64(1), 1, 20).Return([]models.Review{
		{ID: 2, TitleID: 1, Score: 7, Author: models.User{Username: "bob"}},
		{ID: 1, TitleID: 1, Score: 9, Author: models.User{Username: "alice"}},
	}, int64(2), nil)

	result, err := svc.GetTitleReviews(context.Background(), 1, 1, 20)

	assert.NoError(t, err)
	assert.Len(t, result.Data, 2)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, "bob", result.Data[0].Author)
}
