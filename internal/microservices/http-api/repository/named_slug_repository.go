package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// NamedSlugRepository stores records built on models.NamedSlug (categories, genres).
type NamedSlugRepository[T any] interface {
	List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error)
	Create(ctx context.Context, record *T) error
	FindBySlug(ctx context.Context, slug string) (*T, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]T, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

type namedSlugRepository[T any] struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) NamedSlugRepository[models.Category] {
	return &namedSlugRepository[models.Category]{db: db}
}

func NewGenreRepository(db *gorm.DB) NamedSlugRepository[models.Genre] {
	return &namedSlugRepository[models.Genre]{db: db}
}

func (r *namedSlugRepository[T]) List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error) {
	var list []T
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		if search != "" {
			return db.Where("name ILIKE ?", containsPattern(search))
		}
		return db
	}
	if err := r.db.WithContext(ctx).Model(new(T)).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}
	if err := r.db.WithContext(ctx).Scopes(filter).
		Order("name ASC").Order("id ASC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list: %w", err)
	}
	return list, total, nil
}

func (r *namedSlugRepository[T]) Create(ctx context.Context, record *T) error {
	return translate(r.db.WithContext(ctx).Create(record).Error)
}

func (r *namedSlugRepository[T]) FindBySlug(ctx context.Context, slug string) (*T, error) {
	var record T
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindBySlugs returns the records that exist; callers compare lengths to detect unknown slugs.
func (r *namedSlugRepository[T]) FindBySlugs(ctx context.Context, slugs []string) ([]T, error) {
	var list []T
	if len(slugs) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *namedSlugRepository[T]) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *namedSlugRepository[T]) DeleteBySlug(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
