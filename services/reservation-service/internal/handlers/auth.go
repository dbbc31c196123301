package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/meeting-room-booking/services/reservation-service/internal/middlewares"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/service"
)

type AuthHandler struct {
	svc *service.AuthSvc
	log *slog.Logger
}

func NewAuthHandler(svc *service.AuthSvc, log *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var in registerRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Email:    in.Email,
		Password: in.Password,
		FullName: in.FullName,
		IsAdmin:  in.IsAdmin,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toUser(u))
}

// POST /token (form or JSON: username, password)
func (h *AuthHandler) Token(c *gin.Context) {
	var in tokenRequest
	if err := c.ShouldBind(&in); err != nil {
		bindError(c, err)
		return
	}
	tok, err := h.svc.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: tok, TokenType: "bearer"})
}

// GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	u, _ := middlewares.UserFrom(c)
	c.JSON(http.StatusOK, toUser(u))
}
