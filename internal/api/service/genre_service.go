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

type GenreService interface {
	GetAll(ctx context.Context) ([]models.Genre, error)
	Get(ctx context.Context, slug string) (*models.Genre, error)
	Create(ctx context.Context, actor policy.Actor, g *models.Genre) error
	Update(ctx context.Context, actor policy.Actor, slug string, req dto.SlugEntryUpdateRequest) (*models.Genre, error)
	Delete(ctx context.Context, actor policy.Actor, slug string) error
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(r repository.GenreRepository) GenreService {
	return &genreService{repo: r}
}

func (s *genreService) GetAll(ctx context.Context) ([]models.Genre, error) {
	return s.repo.GetAll(ctx)
}

func (s *genreService) Get(ctx context.Context, slug string) (*models.Genre, error) {
	g, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	return g, nil
}

func (s *genreService) Create(ctx context.Context, actor policy.Actor, g *models.Genre) error {
	if d := policy.Decide(actor, policy.ActionCreate, policy.Resource{Kind: policy.KindGenre}); !d.Allowed {
		return denialError(d)
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrNameRequired
	}
	g.Name = strings.TrimSpace(g.Name)
	g.Slug = strings.TrimSpace(g.Slug)
	return s.repo.Create(ctx, g)
}

// Update renames a genre or moves it to a new slug (admin only).
func (s *genreService) Update(ctx context.Context, actor policy.Actor, slug string, req dto.SlugEntryUpdateRequest) (*models.Genre, error) {
	if d := policy.Decide(actor, policy.ActionUpdate, policy.Resource{Kind: policy.KindGenre}); !d.Allowed {
		return nil, denialError(d)
	}

	g, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrNameRequired
		}
		g.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		if strings.TrimSpace(*req.Slug) == "" {
			return nil, ErrSlugRequired
		}
		g.Slug = strings.TrimSpace(*req.Slug)
	}

	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Delete removes the genre and its title associations only; titles stay.
func (s *genreService) Delete(ctx context.Context, actor policy.Actor, slug string) error {
	if d := policy.Decide(actor, policy.ActionDelete, policy.Resource{Kind: policy.KindGenre}); !d.Allowed {
		return denialError(d)
	}
	if err := s.repo.Delete(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGenreNotFound
		}
		return err
	}
	return nil
}
