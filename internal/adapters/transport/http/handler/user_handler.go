package handler

import (
	"net/http"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/httperr"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/users"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc *users.Service
}

func NewUserHandler(svc *users.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) List(c *gin.Context) {
	var q dto.UserListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	page, err := h.svc.List(c.Request.Context(), middleware.CurrentUser(c), q)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserPageResponse(page))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := h.svc.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(u))
}

func (h *UserHandler) Create(c *gin.Context) {
	var body dto.UserCreateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.Create(c.Request.Context(), body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(u))
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body dto.UserUpdateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c), id, body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(u))
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		httperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Restore(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := h.svc.Restore(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(u))
}
