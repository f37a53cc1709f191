package handler

import (
	"net/http"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/httperr"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/projects"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	svc *projects.Service
}

func NewProjectHandler(svc *projects.Service) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

func (h *ProjectHandler) List(c *gin.Context) {
	var q dto.ProjectListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	items, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(items, total, q.Skip, q.Limit))
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var body dto.ProjectCreateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body dto.ProjectUpdateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c), id, body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		httperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
