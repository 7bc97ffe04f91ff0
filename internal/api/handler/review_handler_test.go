package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/policy"
	"reviewhub/internal/api/service"
)

// MockReviewService mocks the ReviewService interface
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CreateReview(ctx context.Context, actor policy.Actor, titleID int64, score int, text string) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, actor, titleID, score, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) UpdateReview(ctx context.Context, actor policy.Actor, titleID, reviewID int64, score int, text string) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, actor, titleID, reviewID, score, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error {
	args := m.Called(ctx, actor, titleID, reviewID)
	return args.Error(0)
}

func (m *MockReviewService) GetReview(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) GetTitleReviews(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedReviewResponse), args.Error(1)
}

func (m *MockReviewService) GetTitleRating(ctx context.Context, titleID int64) (*dto.TitleRatingResponse, error) {
	args := m.Called(ctx, titleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleRatingResponse), args.Error(1)
}

// setActor simulates the auth middleware resolving an authenticated user.
func setActor(actor policy.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("actor", actor)
		c.Next()
	}
}

func reviewRouter(mockReviewService *MockReviewService, actor *policy.Actor) *gin.Engine {
	router := setupRouter()
	titles := router.Group("/titles")
	if actor != nil {
		titles.Use(setActor(*actor))
	}
	NewReviewHandler(mockReviewService).RegisterRoutes(titles)
	return router
}

func TestCreateReview_Handler(t *testing.T) {
	mockReviewService := new(MockReviewService)
	actor := policy.Actor{ID: "u1", Role: models.RoleUser}
	router := reviewRouter(mockReviewService, &actor)

	mockReviewService.On("CreateReview", mock.Anything, actor, int64(1), 8, "great").Return(&dto.ReviewResponse{
		ID: 42, Author: "alice", TitleID: 1, Score: 8, Text: "great",
	}, nil)

	w := postJSON(router, "/titles/1/reviews", dto.ReviewRequest{Score: 8, Text: "great"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.ReviewResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, int64(42), resp.ID)
	mockReviewService.AssertExpectations(t)
}

func TestCreateReview_Anonymous_Handler(t *testing.T) {
	mockReviewService := new(MockReviewService)
	router := reviewRouter(mockReviewService, nil)

	mockReviewService.On("CreateReview", mock.Anything, policy.Actor{}, int64(1), 8, "great").Return(nil, service.ErrUnauthenticated)

	w := postJSON(router, "/titles/1/reviews", dto.ReviewRequest{Score: 8, Text: "great"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateReview_Duplicate_Handler(t *testing.T) {
	mockReviewService := new(MockReviewService)
	actor := policy.Actor{ID: "u1", Role: models.RoleUser}
	router := reviewRouter(mockReviewService, &actor)

	mockReviewService.On("CreateReview", mock.Anything, actor, int64(1), 8, "again").Return(nil, service.ErrDuplicateReview)

	w := postJSON(router, "/titles/1/reviews", dto.ReviewRequest{Score: 8, Text: "again"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateReview_Forbidden_Handler(t *testing.T) {
	mockReviewService := new(MockReviewService)
	actor := policy.Actor{ID: "u2", Role: models.RoleUser}
	router := reviewRouter(mockReviewService, &actor)

	mockReviewService.On("UpdateReview", mock.Anything, actor, int64(1), int64(42), 3, "edit").Return(nil, service.ErrForbidden)

	payload, _ := json.Marshal(dto.ReviewRequest{Score: 3, Text: "edit"})
	req, _ := http.NewRequest("PATCH", "/titles/1/reviews/42", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteReview_Handler(t *testing.T) {
	mockReviewService := new(MockReviewService)
	actor := policy.Actor{ID: "u1", Role: models.RoleUser}
	router := reviewRouter(mockReviewService, &actor)

	mockReviewService.On("DeleteReview", mock.Anything, actor, int64(1), int64(42)).Return(nil)

	req, _ := http.NewRequest("DELETE", "/titles/1/reviews/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockReviewService.AssertExpectations(t)
}

func TestGetReview_NotFound_Handler(t *testing.T) {
	mockReviewService := new(MockReviewService)
	router := reviewRouter(mockReviewService, nil)

	mockReviewService.On("GetReview", mock.Anything, int64(1), int64(999)).Return(nil, service.ErrReviewNotFound)

	req, _ := http.NewRequest("GET", "/titles/1/reviews/999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListReviews_BadTitleID(t *testing.T) {
	mockReviewService := new(MockReviewService)
	router := reviewRouter(mockReviewService, nil)

	req, _ := http.NewRequest("GET", "/titles/not-a-number/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockReviewService.AssertNotCalled(t, "GetTitleReviews", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
