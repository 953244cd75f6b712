package handlers

import (
	"net/http"

	"github.com/LuqmanKt98/hangout-app/services"
	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{Users: users}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	auth, err := h.Users.Register(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Account created", auth)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	auth, err := h.Users.Login(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Logged in", auth)
}
