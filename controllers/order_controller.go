package controllers

import (
	"littlelemon/pkg/apperr"
	"littlelemon/pkg/paginate"
	"littlelemon/pkg/resp"
	"littlelemon/services"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

type OrderController struct{ Svc *services.OrderService }

func NewOrderController(s *services.OrderService) *OrderController { return &OrderController{Svc: s} }

// GET /orders?status=&date=&ordering=
func (h *OrderController) List(c *gin.Context) {
	q, err := services.ParseOrderQuery(c.Query("status"), c.Query("date"), c.Query("ordering"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	page := pageParams(c)
	rows, total, err := h.Svc.List(c.Request.Context(), utils.CurrentPrincipal(c), q, page)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, paginate.New(page, total, rows))
}

// POST /orders
func (h *OrderController) Place(c *gin.Context) {
	o, err := h.Svc.Place(c.Request.Context(), utils.CurrentPrincipal(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, o)
}

// GET /orders/:id
func (h *OrderController) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	o, err := h.Svc.Get(c.Request.Context(), utils.CurrentPrincipal(c), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, o)
}

// PATCH /orders/:id
func (h *OrderController) Patch(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	var patch services.OrderPatch
	if err := bindJSON(c, &patch); err != nil {
		resp.Error(c, err)
		return
	}
	o, err := h.Svc.Update(c.Request.Context(), utils.CurrentPrincipal(c), id, patch)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, o)
}

// PUT /orders/:id is refused; orders only take partial updates.
func (h *OrderController) Replace(c *gin.Context) {
	c.Header("Allow", "GET, PATCH, DELETE")
	resp.Error(c, apperr.MethodNotAllowed("Orders can only be partially updated; use PATCH"))
}

// DELETE /orders/:id
func (h *OrderController) Delete(c *gin.Context) {
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
