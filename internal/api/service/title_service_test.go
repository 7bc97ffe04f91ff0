package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/policy"
)

// MockCategoryRepository mocks the CategoryRepository interface
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

// MockGenreRepository mocks the GenreRepository interface
type MockGenreRepository struct {
	mock.Mock
}

func (m *MockGenreRepository) GetAll(ctx context.Context) ([]models.Genre, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Genre), args.Error(1)
}

func (m *MockGenreRepository) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Genre), args.Error(1)
}

func (m *MockGenreRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	args := m.Called(ctx, slugs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Genre), args.Error(1)
}

func (m *MockGenreRepository) Create(ctx context.Context, g *models.Genre) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGenreRepository) Update(ctx context.Context, g *models.Genre) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGenreRepository) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func newTestTitleService() (TitleService, *MockTitleRepository, *MockCategoryRepository, *MockGenreRepository) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	svc := NewTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo)
	return svc, mockTitleRepo, mockCategoryRepo, mockGenreRepo
}

func adminActor() policy.Actor {
	return policy.Actor{ID: "a1", Role: models.RoleAdmin}
}

func TestCreateTitle_Success(t *testing.T) {
	svc, mockTitleRepo, mockCategoryRepo, mockGenreRepo := newTestTitleService()

	year := 1965
	mockCategoryRepo.On("GetBySlug", mock.Anything, "books").Return(&models.Category{ID: 3, Name: "Books", Slug: "books"}, nil)
	mockGenreRepo.On("GetBySlugs", mock.Anything, []string{"sci-fi"}).Return([]models.Genre{{ID: 5, Name: "Sci-Fi", Slug: "sci-fi"}}, nil)
	mockTitleRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Title")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Title).ID = 1
	}).Return(nil)
	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{
		ID: 1, Name: "Dune", Year: &year,
		Category: &models.Category{ID: 3, Name: "Books", Slug: "books"},
		Genres:   []models.Genre{{ID: 5, Name: "Sci-Fi", Slug: "sci-fi"}},
	}, nil)

	title, err := svc.Create(context.Background(), adminActor(), dto.TitleRequest{
		Name:     "Dune",
		Year:     &year,
		Category: "books",
		Genres:   []string{"sci-fi"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Dune", title.Name)
	assert.Nil(t, title.Rating)
	mockTitleRepo.AssertExpectations(t)
}

func TestCreateTitle_NonAdminForbidden(t *testing.T) {
	svc, mockTitleRepo, _, _ := newTestTitleService()

	_, err := svc.Create(context.Background(), userActor("u1"), dto.TitleRequest{Name: "Dune"})
	assert.Equal(t, ErrForbidden, err)

	moderator := policy.Actor{ID: "m1", Role: models.RoleModerator}
	_, err = svc.Create(context.Background(), moderator, dto.TitleRequest{Name: "Dune"})
	assert.Equal(t, ErrForbidden, err)

	_, err = svc.Create(context.Background(), policy.Actor{}, dto.TitleRequest{Name: "Dune"})
	assert.Equal(t, ErrUnauthenticated, err)

	mockTitleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTitle_UnknownCategory(t *testing.T) {
	svc, _, mockCategoryRepo, _ := newTestTitleService()

	mockCategoryRepo.On("GetBySlug", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Create(context.Background(), adminActor(), dto.TitleRequest{Name: "Dune", Category: "nope"})

	assert.Equal(t, ErrUnknownCategory, err)
}

func TestCreateTitle_UnknownGenre(t *testing.T) {
	svc, _, _, mockGenreRepo := newTestTitleService()

	// only one of the two slugs resolves
	mockGenreRepo.On("GetBySlugs", mock.Anything, []string{"sci-fi", "nope"}).Return([]models.Genre{{ID: 5, Slug: "sci-fi"}}, nil)

	_, err := svc.Create(context.Background(), adminActor(), dto.TitleRequest{Name: "Dune", Genres: []string{"sci-fi", "nope"}})

	assert.Equal(t, ErrUnknownGenre, err)
}

func TestCreateTitle_YearInFuture(t *testing.T) {
	svc, _, _, _ := newTestTitleService()

	year := time.Now().Year() + 1
	_, err := svc.Create(context.Background(), adminActor(), dto.TitleRequest{Name: "Dune 3", Year: &year})

	assert.Equal(t, ErrYearInFuture, err)
}

func TestCreateTitle_NameRequired(t *testing.T) {
	svc, _, _, _ := newTestTitleService()

	_, err := svc.Create(context.Background(), adminActor(), dto.TitleRequest{Name: "   "})

	assert.Equal(t, ErrNameRequired, err)
}

func TestUpdateTitle_KeepsRating(t *testing.T) {
	svc, mockTitleRepo, _, _ := newTestTitleService()

	rating := 7.5
	existing := &models.Title{ID: 1, Name: "Dune", Rating: &rating}
	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil)
	mockTitleRepo.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(title *models.Title) bool {
		return title.Rating == &rating && title.Name == "Dune (expanded)"
	})).Return(nil)

	_, err := svc.Update(context.Background(), adminActor(), 1, dto.TitleRequest{Name: "Dune (expanded)"})

	assert.NoError(t, err)
	mockTitleRepo.AssertExpectations(t)
}

func TestDeleteTitle_NotFound(t *testing.T) {
	svc, mockTitleRepo, _, _ := newTestTitleService()

	mockTitleRepo.On("Delete", mock.Anything, int64(99)).Return(gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), adminActor(), 99)

	assert.Equal(t, ErrTitleNotFound, err)
}

func TestGetTitleByID_NotFound(t *testing.T) {
	svc, mockTitleRepo, _, _ := newTestTitleService()

	mockTitleRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetByID(context.Background(), 99)

	assert.Equal(t, ErrTitleNotFound, err)
}
