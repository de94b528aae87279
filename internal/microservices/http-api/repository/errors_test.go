package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	plain := errors.New("boom")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"gorm duplicate", gorm.ErrDuplicatedKey, ErrDuplicate},
		{"gorm foreign key", gorm.ErrForeignKeyViolated, ErrMissingReference},
		{"pg unique", &pgconn.PgError{Code: "23505", ConstraintName: "idx_reviews_author_title"}, ErrDuplicate},
		{"pg foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "fk_comments_review"}, ErrMissingReference},
		{"other pg error", &pgconn.PgError{Code: "23514"}, nil},
		{"plain", plain, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.in)
			if tt.want == nil {
				assert.Equal(t, tt.in, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	assert.NoError(t, translate(nil))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, offset(0, 10))
	assert.Equal(t, 0, offset(1, 10))
	assert.Equal(t, 20, offset(3, 10))
}
