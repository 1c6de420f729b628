package controllers

import (
	"littlelemon/pkg/resp"
	"littlelemon/services"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct{ Svc *services.AuthService }

func NewAuthController(s *services.AuthService) *AuthController { return &AuthController{Svc: s} }

type meOut struct {
	ID          uint     `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	IsSuperuser bool     `json:"is_superuser"`
	Groups      []string `json:"groups"`
	Role        string   `json:"role"`
}

// POST /auth/users
func (h *AuthController) Register(c *gin.Context) {
	var in services.RegisterIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, u)
}

// POST /auth/token/login
func (h *AuthController) Login(c *gin.Context) {
	var in services.LoginIn
	if err := bindJSON(c, &in); err != nil {
		resp.Error(c, err)
		return
	}
	token, err := h.Svc.Login(c.Request.Context(), in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"auth_token": token})
}

// GET /auth/users/me
func (h *AuthController) Me(c *gin.Context) {
	p := utils.CurrentPrincipal(c)
	u, err := h.Svc.UserRepo.FindByID(c.Request.Context(), p.UserID)
	if err != nil {
		resp.Error(c, err)
		return
	}
	groups := u.GroupNames()
	resp.OK(c, meOut{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
		Groups:      groups,
		Role:        p.Role().String(),
	})
}
