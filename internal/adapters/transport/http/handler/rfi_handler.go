package handler

import (
	"net/http"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/httperr"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/rfi"
	"github.com/gin-gonic/gin"
)

type RFIHandler struct {
	svc *rfi.Service
}

func NewRFIHandler(svc *rfi.Service) *RFIHandler {
	return &RFIHandler{svc: svc}
}

func (h *RFIHandler) Create(c *gin.Context) {
	var body dto.RFICreateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *RFIHandler) List(c *gin.Context) {
	var q dto.PageQuery
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

func (h *RFIHandler) Search(c *gin.Context) {
	var q dto.RFISearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	items, total, err := h.svc.Search(c.Request.Context(), q)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(items, total, q.Skip, q.Limit))
}

func (h *RFIHandler) Pending(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	items, total, err := h.svc.Pending(c.Request.Context(), q)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(items, total, q.Skip, q.Limit))
}

func (h *RFIHandler) Statistics(c *gin.Context) {
	var q struct {
		ProjectID *int64 `form:"project_id"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	stats, err := h.svc.Statistics(c.Request.Context(), q.ProjectID)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *RFIHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RFIHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body dto.RFIUpdateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.svc.Update(c.Request.Context(), id, body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RFIHandler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.svc.Approve(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RFIHandler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := reason(c)
	if !ok {
		return
	}
	r, err := h.svc.Reject(c.Request.Context(), middleware.CurrentUser(c), id, in)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RFIHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := reason(c)
	if !ok {
		return
	}
	r, err := h.svc.Cancel(c.Request.Context(), middleware.CurrentUser(c), id, in)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RFIHandler) Delete(c *gin.Context) {
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

// reason: ?reason= или JSON {"reason": "..."}; битое тело – 400.
func reason(c *gin.Context) (dto.RFIReasonDTO, bool) {
	var in dto.RFIReasonDTO
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return in, false
		}
	}
	if in.Reason == "" {
		in.Reason = c.Query("reason")
	}
	return in, true
}
