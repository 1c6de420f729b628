package controllers

import (
	"littlelemon/pkg/paginate"
	"littlelemon/pkg/resp"
	"littlelemon/services"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

type CategoryController struct{ Svc *services.CategoryService }

func NewCategoryController(s *services.CategoryService) *CategoryController {
	return &CategoryController{Svc: s}
}

// GET /categories
func (h *CategoryController) List(c *gin.Context) {
	page := pageParams(c)
	rows, total, err := h.Svc.List(c.Request.Context(), page)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, paginate.New(page, total, rows))
}

// POST /categories
func (h *CategoryController) Create(c *gin.Context) {
	var in services.CategoryIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	cat, err := h.Svc.Create(c.Request.Context(), utils.CurrentPrincipal(c), in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, cat)
}
