package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// NamedSlugHandler serves /categories and /genres
type NamedSlugHandler struct {
	svc service.NamedSlugService
}

func NewNamedSlugHandler(svc service.NamedSlugService) *NamedSlugHandler {
	return &NamedSlugHandler{svc: svc}
}

// RegisterRoutes registers list/create/delete under path, e.g. "/categories"
func (h *NamedSlugHandler) RegisterRoutes(rg *gin.RouterGroup, path string) {
	group := rg.Group(path, middleware.AdminOrReadOnly())
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.DELETE("/:slug", h.Delete)
	}
}

type searchQuery struct {
	dto.PageQuery
	Search string `form:"search"`
}

func (h *NamedSlugHandler) List(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	page, pageSize := q.Normalize()

	resp, err := h.svc.List(c.Request.Context(), q.Search, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NamedSlugHandler) Create(c *gin.Context) {
	var req dto.NamedSlugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *NamedSlugHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
