package controllers

import (
	"littlelemon/pkg/paginate"
	"littlelemon/pkg/resp"
	"littlelemon/services"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

type MenuItemController struct{ Svc *services.MenuService }

func NewMenuItemController(s *services.MenuService) *MenuItemController {
	return &MenuItemController{Svc: s}
}

// GET /menu-items?category_id=&category=&featured=&search=&ordering=
func (h *MenuItemController) List(c *gin.Context) {
	f, err := services.ParseMenuQuery(c.Query("category_id"), c.Query("category"),
		c.Query("featured"), c.Query("search"), c.Query("ordering"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	page := pageParams(c)
	rows, total, err := h.Svc.List(c.Request.Context(), f, page)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, paginate.New(page, total, rows))
}

// GET /menu-items/:id
func (h *MenuItemController) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	m, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, m)
}

// POST /menu-items
func (h *MenuItemController) Create(c *gin.Context) {
	var in services.MenuItemIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	m, err := h.Svc.Create(c.Request.Context(), utils.CurrentPrincipal(c), in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, m)
}

// PUT /menu-items/:id
func (h *MenuItemController) Replace(c *gin.Context) { h.update(c, false) }

// PATCH /menu-items/:id
func (h *MenuItemController) Patch(c *gin.Context) { h.update(c, true) }

func (h *MenuItemController) update(c *gin.Context, partial bool) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	var in services.MenuItemIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	m, err := h.Svc.Update(c.Request.Context(), utils.CurrentPrincipal(c), id, in, partial)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, m)
}

// DELETE /menu-items/:id
func (h *MenuItemController) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), utils.CurrentPrincipal(c), id); err != nil {
		resp.Error(c, err)
		return
	}
	resp.NoContent(c)
}
