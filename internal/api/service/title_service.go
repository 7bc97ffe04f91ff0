package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/policy"
	"reviewhub/internal/api/repository"
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, actor policy.Actor, req dto.TitleRequest) (*dto.TitleResponse, error)
	Update(ctx context.Context, actor policy.Actor, id int64, req dto.TitleRequest) (*dto.TitleResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
}

func NewTitleService(titleRepo repository.TitleRepository, categoryRepo repository.CategoryRepository, genreRepo repository.GenreRepository) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error) {
	titles, total, err := s.titleRepo.GetAll(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	titleResponses := make([]dto.TitleResponse, 0, len(titles))
	for _, title := range titles {
		titleResponses = append(titleResponses, *dto.FromModelToTitleResponse(&title))
	}

	return dto.NewPaginatedTitleResponse(titleResponses, int(total), page, pageSize), nil
}

func (s *titleService) GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}
	return dto.FromModelToTitleResponse(title), nil
}

// Create builds a title from category and genre slugs; every slug must
// already exist.
func (s *titleService) Create(ctx context.Context, actor policy.Actor, req dto.TitleRequest) (*dto.TitleResponse, error) {
	if d := policy.Decide(actor, policy.ActionCreate, policy.Resource{Kind: policy.KindTitle}); !d.Allowed {
		return nil, denialError(d)
	}

	title, err := s.buildTitle(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}

	title, err = s.titleRepo.GetByID(ctx, title.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToTitleResponse(title), nil
}

func (s *titleService) Update(ctx context.Context, actor policy.Actor, id int64, req dto.TitleRequest) (*dto.TitleResponse, error) {
	if d := policy.Decide(actor, policy.ActionUpdate, policy.Resource{Kind: policy.KindTitle}); !d.Allowed {
		return nil, denialError(d)
	}

	existing, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	title, err := s.buildTitle(ctx, req)
	if err != nil {
		return nil, err
	}
	title.Rating = existing.Rating
	title.CreatedAt = existing.CreatedAt

	if err := s.titleRepo.Update(ctx, id, title); err != nil {
		return nil, err
	}

	title, err = s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToTitleResponse(title), nil
}

func (s *titleService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if d := policy.Decide(actor, policy.ActionDelete, policy.Resource{Kind: policy.KindTitle}); !d.Allowed {
		return denialError(d)
	}

	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

// buildTitle validates the request and resolves category/genre slugs to
// stored entities.
func (s *titleService) buildTitle(ctx context.Context, req dto.TitleRequest) (*models.Title, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if req.Year != nil && *req.Year > time.Now().Year() {
		return nil, ErrYearInFuture
	}

	title := &models.Title{
		Name:        strings.TrimSpace(req.Name),
		Year:        req.Year,
		Description: req.Description,
	}

	if req.Category != "" {
		category, err := s.categoryRepo.GetBySlug(ctx, req.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownCategory
			}
			return nil, err
		}
		title.CategoryID = &category.ID
	}

	if len(req.Genres) > 0 {
		genres, err := s.genreRepo.GetBySlugs(ctx, req.Genres)
		if err != nil {
			return nil, err
		}
		if len(genres) != len(uniqueStrings(req.Genres)) {
			return nil, ErrUnknownGenre
		}
		title.Genres = genres
	}

	return title, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
