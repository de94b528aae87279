package models

import (
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

const (
	MaxNameLength = 256
	MaxSlugLength = 50
)

// ErrYearInFuture is returned when a title is dated after the current year.
var ErrYearInFuture = errors.New("year in future")

// Clock is the single time source for year validation. Tests may replace it.
var Clock = time.Now

func CurrentYear() int {
	return Clock().Year()
}

// ValidateYear rejects non-positive years and years after the current one.
func ValidateYear(year int) error {
	if year <= 0 {
		return fmt.Errorf("year must be positive, got %d", year)
	}
	if current := CurrentYear(); year > current {
		return fmt.Errorf("%w: %d is after %d", ErrYearInFuture, year, current)
	}
	return nil
}

// NamedSlug is the field set shared by categories and genres.
type NamedSlug struct {
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"size:50;uniqueIndex;not null"`
}

func (n NamedSlug) Named() NamedSlug {
	return n
}

type Category struct {
	ID int64 `json:"-" gorm:"primaryKey;autoIncrement"`
	NamedSlug
}

func NewCategory(n NamedSlug) *Category {
	return &Category{NamedSlug: n}
}

func (Category) TableName() string {
	return "categories"
}

type Genre struct {
	ID int64 `json:"-" gorm:"primaryKey;autoIncrement"`
	NamedSlug
}

func NewGenre(n NamedSlug) *Genre {
	return &Genre{NamedSlug: n}
}

func (Genre) TableName() string {
	return "genres"
}

type Title struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"size:256;not null"`
	Year        int     `json:"year" gorm:"not null;index;check:chk_titles_year,year > 0"`
	Description *string `json:"description,omitempty" gorm:"size:256"`
	CategoryID  *int64  `json:"-" gorm:"index"`

	// Rating is filled by the read queries from the reviews table and never written.
	Rating *float64 `json:"rating" gorm:"->;-:migration"`

	Category *Category `json:"category" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genre" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}

// BeforeSave repeats the year check for writes that bypass request validation.
func (t *Title) BeforeSave(tx *gorm.DB) error {
	return ValidateYear(t.Year)
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ValidName reports whether name is 1 to MaxNameLength characters (runes) long.
func ValidName(name string) bool {
	return name != "" && utf8.RuneCountInString(name) <= MaxNameLength
}

func ValidSlug(slug string) bool {
	return slug != "" && len(slug) <= MaxSlugLength && slugPattern.MatchString(slug)
}
