package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ratingColumn projects the mean review score; AVG over no rows is NULL.
const ratingColumn = "(SELECT AVG(reviews.score)::float8 FROM reviews WHERE reviews.title_id = titles.id) AS rating"

type TitleFilter struct {
	Category string // category slug
	Genre    string // genre slug
	Name     string // case-insensitive substring
	Year     int
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, t *models.Title, genres []models.Genre) error
	// Save writes the scalar columns and, when genres is non-nil, replaces the genre set.
	Save(ctx context.Context, t *models.Title, genres []models.Genre) error
	Delete(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (f TitleFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Category != "" {
		db = db.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	if f.Genre != "" {
		db = db.Where(`EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = titles.id AND g.slug = ?)`, f.Genre)
	}
	if f.Name != "" {
		db = db.Where("titles.name ILIKE ?", containsPattern(f.Name))
	}
	if f.Year != 0 {
		db = db.Where("titles.year = ?", f.Year)
	}
	return db
}

// withRating selects the read shape: scalar columns, rating, category and genres.
func (r *titleRepository) withRating(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Title{}).
		Select("titles.*, " + ratingColumn).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB {
			return db.Order("genres.name ASC")
		})
}

// List orders by rating with unrated titles last, then by name.
func (r *titleRepository) List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Title{}).Scopes(filter.apply).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	if err := r.withRating(ctx).
		Scopes(filter.apply).
		Order("rating DESC NULLS LAST").
		Order("titles.name ASC").
		Order("titles.id ASC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return list, total, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.withRating(ctx).Where("titles.id = ?", id).Take(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *titleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *titleRepository) Create(ctx context.Context, t *models.Title, genres []models.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return fmt.Errorf("create title: %w", translate(err))
		}
		return replaceGenres(tx, t, genres)
	})
}

func (r *titleRepository) Save(ctx context.Context, t *models.Title, genres []models.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Updates never falls back to an insert, so a title deleted meanwhile stays deleted.
		result := tx.Select("*").Omit(clause.Associations).Updates(t)
		if result.Error != nil {
			return fmt.Errorf("update title: %w", translate(result.Error))
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if genres == nil {
			return nil
		}
		return replaceGenres(tx, t, genres)
	})
}

func replaceGenres(tx *gorm.DB, t *models.Title, genres []models.Genre) error {
	assoc := tx.Model(t).Association("Genres")
	var err error
	if len(genres) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(genres)
	}
	if err != nil {
		return fmt.Errorf("set title genres: %w", translate(err))
	}
	t.Genres = genres
	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
