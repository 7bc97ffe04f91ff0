package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
)

func newTestGenreService() (GenreService, *MockGenreRepository) {
	mockRepo := new(MockGenreRepository)
	return NewGenreService(mockRepo), mockRepo
}

func TestGetGenre_Success(t *testing.T) {
	svc, mockRepo := newTestGenreService()

	mockRepo.On("GetBySlug", mock.Anything, "sci-fi").
		Return(&models.Genre{ID: 3, Name: "Sci-Fi", Slug: "sci-fi"}, nil)

	genre, err := svc.Get(context.Background(), "sci-fi")

	assert.NoError(t, err)
	assert.Equal(t, "Sci-Fi", genre.Name)
}

func TestGetGenre_NotFound(t *testing.T) {
	svc, mockRepo := newTestGenreService()

	mockRepo.On("GetBySlug", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Get(context.Background(), "nope")

	assert.Equal(t, ErrGenreNotFound, err)
}

func TestUpdateGenre_Success(t *testing.T) {
	svc, mockRepo := newTestGenreService()

	mockRepo.On("GetBySlug", mock.Anything, "sci-fi").
		Return(&models.Genre{ID: 3, Name: "Sci-Fi", Slug: "sci-fi"}, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(g *models.Genre) bool {
		return g.Name == "Science Fiction" && g.Slug == "sci-fi"
	})).Return(nil)

	name := "Science Fiction"
	genre, err := svc.Update(context.Background(), adminActor(), "sci-fi", dto.SlugEntryUpdateRequest{Name: &name})

	assert.NoError(t, err)
	assert.Equal(t, "Science Fiction", genre.Name)
	mockRepo.AssertExpectations(t)
}

func TestUpdateGenre_NonAdminForbidden(t *testing.T) {
	svc, mockRepo := newTestGenreService()

	name := "Horror"
	_, err := svc.Update(context.Background(), userActor("u1"), "sci-fi", dto.SlugEntryUpdateRequest{Name: &name})

	assert.Equal(t, ErrForbidden, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateGenre_NotFound(t *testing.T) {
	svc, mockRepo := newTestGenreService()

	mockRepo.On("GetBySlug", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	name := "Anything"
	_, err := svc.Update(context.Background(), adminActor(), "nope", dto.SlugEntryUpdateRequest{Name: &name})

	assert.Equal(t, ErrGenreNotFound, err)
}
