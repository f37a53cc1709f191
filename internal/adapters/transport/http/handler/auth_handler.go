package handler

import (
	"net/http"
	"strings"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/httperr"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/middleware"
	appsvc "github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/auth/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc appsvc.Service
	log *zap.Logger
}

func NewAuthHandler(svc appsvc.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	h.log.Info("/auth/register", zap.String("user", fingerprint(body.Username)))

	user, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login принимает и JSON, и OAuth2-форму (application/x-www-form-urlencoded).
func (h *AuthHandler) Login(c *gin.Context) {
	var body dto.LoginDTO
	var err error
	if strings.HasPrefix(c.ContentType(), binding.MIMEJSON) {
		err = c.ShouldBindJSON(&body)
	} else {
		err = c.ShouldBindWith(&body, binding.Form)
	}
	if err != nil {
		badRequest(c, err)
		return
	}
	h.log.Info("/auth/login", zap.String("user", fingerprint(body.Username)))

	sess, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTokenResponse(sess))
}

// Refresh: refresh_token в JSON-теле или в query.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var body dto.RefreshDTO
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}
	}
	if body.RefreshToken == "" {
		body.RefreshToken = c.Query("refresh_token")
	}

	pair, err := h.svc.Refresh(c.Request.Context(), body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRefreshResponse(pair))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	body := dto.LogoutDTO{AccessToken: middleware.AccessToken(c)}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}
	}

	if err := h.svc.Logout(c.Request.Context(), body); err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewUserResponse(middleware.CurrentUser(c)))
}
