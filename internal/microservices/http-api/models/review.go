package models

import "time"

const (
	MinScore = 1
	MaxScore = 10
)

// AuthoredText is the field set shared by reviews and comments.
type AuthoredText struct {
	Text    string    `json:"text" gorm:"type:text;not null"`
	PubDate time.Time `json:"pub_date" gorm:"autoCreateTime;index;<-:create"`
}

type Review struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID  int64  `json:"-" gorm:"not null;uniqueIndex:idx_reviews_author_title,priority:2"`
	AuthorID string `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_author_title,priority:1"`
	Score    int    `json:"score" gorm:"not null;check:chk_reviews_score,score >= 1 AND score <= 10"`
	AuthoredText

	Title  Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
	Author User  `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) AuthorUserID() string {
	return r.AuthorID
}

type Comment struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	ReviewID int64  `json:"-" gorm:"not null;index"`
	AuthorID string `json:"-" gorm:"type:uuid;not null;index"`
	AuthoredText

	Review Review `json:"-" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;"`
	Author User   `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) AuthorUserID() string {
	return c.AuthorID
}

// All lists every model in dependency order for schema migration.
func All() []any {
	return []any{&User{}, &Category{}, &Genre{}, &Title{}, &Review{}, &Comment{}}
}
