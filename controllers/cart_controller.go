package controllers

import (
	"littlelemon/pkg/resp"
	"littlelemon/services"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

type CartController struct{ Svc *services.CartService }

func NewCartController(s *services.CartService) *CartController { return &CartController{Svc: s} }

// GET /cart/menu-items
func (h *CartController) List(c *gin.Context) {
	lines, err := h.Svc.List(c.Request.Context(), utils.CurrentPrincipal(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, lines)
}

// POST /cart/menu-items
func (h *CartController) Add(c *gin.Context) {
	var in services.AddToCartIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	line, err := h.Svc.Add(c.Request.Context(), utils.CurrentPrincipal(c), in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, line)
}

// DELETE /cart/menu-items
func (h *CartController) Clear(c *gin.Context) {
	n, err := h.Svc.Clear(c.Request.Context(), utils.CurrentPrincipal(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"deleted": n})
}
