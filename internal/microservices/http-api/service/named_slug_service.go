package service

import (
	"context"
	"errors"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// NamedSlugService serves categories and genres, which differ only in their table.
type NamedSlugService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.NamedSlugResponse], error)
	Create(ctx context.Context, req dto.NamedSlugRequest) (*dto.NamedSlugResponse, error)
	Delete(ctx context.Context, slug string) error
}

type named interface {
	Named() models.NamedSlug
}

type namedSlugService[T named] struct {
	repo  repository.NamedSlugRepository[T]
	kind  string
	build func(models.NamedSlug) *T
}

func NewNamedSlugService[T named](repo repository.NamedSlugRepository[T], kind string, build func(models.NamedSlug) *T) NamedSlugService {
	return &namedSlugService[T]{repo: repo, kind: kind, build: build}
}

func NewCategoryService(repo repository.NamedSlugRepository[models.Category]) NamedSlugService {
	return NewNamedSlugService(repo, "category", models.NewCategory)
}

func NewGenreService(repo repository.NamedSlugRepository[models.Genre]) NamedSlugService {
	return NewNamedSlugService(repo, "genre", models.NewGenre)
}

func (s *namedSlugService[T]) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.NamedSlugResponse], error) {
	list, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.MapPage(list, total, page, pageSize, func(v *T) dto.NamedSlugResponse {
		return dto.FromNamedSlug((*v).Named())
	}), nil
}

func (s *namedSlugService[T]) Create(ctx context.Context, req dto.NamedSlugRequest) (*dto.NamedSlugResponse, error) {
	if !models.ValidName(req.Name) {
		return nil, invalid("%s name must be 1 to %d characters", s.kind, models.MaxNameLength)
	}
	if !models.ValidSlug(req.Slug) {
		return nil, invalid("%s slug %q must match [-a-zA-Z0-9_] and be at most %d characters", s.kind, req.Slug, models.MaxSlugLength)
	}

	exists, err := s.repo.ExistsBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, invalid("%s with slug %q already exists", s.kind, req.Slug)
	}

	record := s.build(models.NamedSlug{Name: req.Name, Slug: req.Slug})
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, duplicateAsConflict(err, s.kind, "%s %q", s.kind, req.Slug)
	}
	resp := dto.FromNamedSlug((*record).Named())
	return &resp, nil
}

func (s *namedSlugService[T]) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("%s %q", s.kind, slug)
		}
		return err
	}
	return nil
}
