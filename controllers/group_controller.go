package controllers

import (
	"littlelemon/pkg/paginate"
	"littlelemon/pkg/resp"
	"littlelemon/services"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

// GroupController administers one managed group.
type GroupController struct {
	Svc   *services.GroupService
	Group services.ManagedGroup
}

func NewGroupController(s *services.GroupService, g services.ManagedGroup) *GroupController {
	return &GroupController{Svc: s, Group: g}
}

// GET /groups/<group>/users
func (h *GroupController) List(c *gin.Context) {
	page := pageParams(c)
	users, total, err := h.Svc.ListMembers(c.Request.Context(), utils.CurrentPrincipal(c), h.Group, page)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, paginate.New(page, total, users))
}

// POST /groups/<group>/users
func (h *GroupController) Add(c *gin.Context) {
	var in services.MemberIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	u, err := h.Svc.AddMember(c.Request.Context(), utils.CurrentPrincipal(c), h.Group, in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, u)
}

// DELETE /groups/<group>/users/:id
func (h *GroupController) Remove(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Error(c, err)
		return
	}
	u, err := h.Svc.RemoveMember(c.Request.Context(), utils.CurrentPrincipal(c), h.Group, id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"message": u.Username + " removed from " + h.Group.Name, "user": u})
}
