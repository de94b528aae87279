package dto

import "yamdb/internal/microservices/http-api/models"

// NamedSlugRequest creates a category or a genre
type NamedSlugRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

type NamedSlugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromNamedSlug(n models.NamedSlug) NamedSlugResponse {
	return NamedSlugResponse{Name: n.Name, Slug: n.Slug}
}

// TitleRequest is the write shape for create and full replace: category and genres by slug
type TitleRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}

// TitlePatchRequest is a partial update. An empty category slug clears the category;
// an empty genre list clears the genres; omitted fields are left unchanged.
type TitlePatchRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=256"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}

// TitleQuery binds the list filters
type TitleQuery struct {
	PageQuery
	Category string `form:"category"`
	Genre    string `form:"genre"`
	Name     string `form:"name"`
	Year     int    `form:"year"`
}

// TitleResponse is the read shape: embedded category and genres plus the derived rating
type TitleResponse struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Year        int                 `json:"year"`
	Rating      *float64            `json:"rating"`
	Description *string             `json:"description"`
	Genre       []NamedSlugResponse `json:"genre"`
	Category    *NamedSlugResponse  `json:"category"`
}

func FromModelToTitleResponse(t *models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       make([]NamedSlugResponse, 0, len(t.Genres)),
	}
	for _, g := range t.Genres {
		resp.Genre = append(resp.Genre, FromNamedSlug(g.NamedSlug))
	}
	if t.Category != nil {
		c := FromNamedSlug(t.Category.NamedSlug)
		resp.Category = &c
	}
	return resp
}
