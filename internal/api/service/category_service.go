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

type CategoryService interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, actor policy.Actor, c *models.Category) error
	Update(ctx context.Context, actor policy.Actor, slug string, req dto.SlugEntryUpdateRequest) (*models.Category, error)
	Delete(ctx context.Context, actor policy.Actor, slug string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(r repository.CategoryRepository) CategoryService {
	return &categoryService{repo: r}
}

func (s *categoryService) GetAll(ctx context.Context) ([]models.Category, error) {
	return s.repo.GetAll(ctx)
}

func (s *categoryService) Get(ctx context.Context, slug string) (*models.Category, error) {
	c, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *categoryService) Create(ctx context.Context, actor policy.Actor, c *models.Category) error {
	if d := policy.Decide(actor, policy.ActionCreate, policy.Resource{Kind: policy.KindCategory}); !d.Allowed {
		return denialError(d)
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = strings.TrimSpace(c.Slug)
	return s.repo.Create(ctx, c)
}

// Update renames a category or moves it to a new slug (admin only).
func (s *categoryService) Update(ctx context.Context, actor policy.Actor, slug string, req dto.SlugEntryUpdateRequest) (*models.Category, error) {
	if d := policy.Decide(actor, policy.ActionUpdate, policy.Resource{Kind: policy.KindCategory}); !d.Allowed {
		return nil, denialError(d)
	}

	c, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrNameRequired
		}
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		if strings.TrimSpace(*req.Slug) == "" {
			return nil, ErrSlugRequired
		}
		c.Slug = strings.TrimSpace(*req.Slug)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete clears the category reference on dependent titles instead of
// cascading into them.
func (s *categoryService) Delete(ctx context.Context, actor policy.Actor, slug string) error {
	if d := policy.Decide(actor, policy.ActionDelete, policy.Resource{Kind: policy.KindCategory}); !d.Allowed {
		return denialError(d)
	}
	if err := s.repo.Delete(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}
