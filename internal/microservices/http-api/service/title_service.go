package service

import (
	"context"
	"errors"
	"fmt"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

type TitleService interface {
	List(ctx context.Context, q dto.TitleQuery) (*dto.Paginated[dto.TitleResponse], error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, req dto.TitleRequest) (*dto.TitleResponse, error)
	// Replace overwrites every writable field; omitted category and genres are cleared.
	Replace(ctx context.Context, id int64, req dto.TitleRequest) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, req dto.TitlePatchRequest) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titles     repository.TitleRepository
	categories repository.NamedSlugRepository[models.Category]
	genres     repository.NamedSlugRepository[models.Genre]
}

func NewTitleService(
	titles repository.TitleRepository,
	categories repository.NamedSlugRepository[models.Category],
	genres repository.NamedSlugRepository[models.Genre],
) TitleService {
	return &titleService{titles: titles, categories: categories, genres: genres}
}

func (s *titleService) List(ctx context.Context, q dto.TitleQuery) (*dto.Paginated[dto.TitleResponse], error) {
	page, pageSize := q.Normalize()
	filter := repository.TitleFilter{
		Category: q.Category,
		Genre:    q.Genre,
		Name:     q.Name,
		Year:     q.Year,
	}
	list, total, err := s.titles.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.MapPage(list, total, page, pageSize, dto.FromModelToTitleResponse), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToTitleResponse(t)
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, req dto.TitleRequest) (*dto.TitleResponse, error) {
	t := &models.Title{}
	genres, err := s.fill(ctx, t, req)
	if err != nil {
		return nil, err
	}
	if err := s.titles.Create(ctx, t, genres); err != nil {
		return nil, writeError(err)
	}
	return s.Get(ctx, t.ID)
}

func (s *titleService) Replace(ctx context.Context, id int64, req dto.TitleRequest) (*dto.TitleResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	genres, err := s.fill(ctx, t, req)
	if err != nil {
		return nil, err
	}
	if err := s.titles.Save(ctx, t, genres); err != nil {
		return nil, writeError(err)
	}
	return s.Get(ctx, id)
}

// fill validates req and copies it onto t. The returned genre set is never nil.
func (s *titleService) fill(ctx context.Context, t *models.Title, req dto.TitleRequest) ([]models.Genre, error) {
	if err := checkTitleName(req.Name); err != nil {
		return nil, err
	}
	if err := checkYear(req.Year); err != nil {
		return nil, err
	}
	categoryID, category, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	t.Name = req.Name
	t.Year = req.Year
	t.Description = req.Description
	t.CategoryID = categoryID
	t.Category = category
	return genres, nil
}

func (s *titleService) Update(ctx context.Context, id int64, req dto.TitlePatchRequest) (*dto.TitleResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := checkTitleName(*req.Name); err != nil {
			return nil, err
		}
		t.Name = *req.Name
	}
	if req.Year != nil {
		if err := checkYear(*req.Year); err != nil {
			return nil, err
		}
		t.Year = *req.Year
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Category != nil {
		t.CategoryID, t.Category, err = s.resolveCategory(ctx, req.Category)
		if err != nil {
			return nil, err
		}
	}
	var genres []models.Genre
	if req.Genre != nil {
		if genres, err = s.resolveGenres(ctx, req.Genre); err != nil {
			return nil, err
		}
	}

	if err := s.titles.Save(ctx, t, genres); err != nil {
		return nil, writeError(err)
	}
	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titles.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("title %d", id)
		}
		return err
	}
	return nil
}

func (s *titleService) find(ctx context.Context, id int64) (*models.Title, error) {
	t, err := s.titles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("title %d", id)
		}
		return nil, err
	}
	return t, nil
}

// resolveCategory maps a slug to its category; nil or "" means no category.
func (s *titleService) resolveCategory(ctx context.Context, slug *string) (*int64, *models.Category, error) {
	if slug == nil || *slug == "" {
		return nil, nil, nil
	}
	category, err := s.categories.FindBySlug(ctx, *slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, invalid("unknown category %q", *slug)
		}
		return nil, nil, err
	}
	return &category.ID, category, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	unique := make([]string, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if !seen[slug] {
			seen[slug] = true
			unique = append(unique, slug)
		}
	}
	if len(unique) == 0 {
		return []models.Genre{}, nil
	}

	genres, err := s.genres.FindBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(unique) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		for _, slug := range unique {
			if !found[slug] {
				return nil, invalid("unknown genre %q", slug)
			}
		}
	}
	return genres, nil
}

func checkTitleName(name string) error {
	if !models.ValidName(name) {
		return invalid("name must be 1 to %d characters", models.MaxNameLength)
	}
	return nil
}

func checkYear(year int) error {
	if err := models.ValidateYear(year); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// writeError surfaces the persistence-time year check as a validation failure.
func writeError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound("title no longer exists")
	case errors.Is(err, models.ErrYearInFuture):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, repository.ErrMissingReference):
		return invalid("referenced category or genre no longer exists")
	}
	return err
}
