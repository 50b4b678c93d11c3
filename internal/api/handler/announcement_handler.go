package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/service"
	"github.com/resitasrav/BookLab-System/pkg/response"
)

// AnnouncementHandler 公告 HTTP 处理器
type AnnouncementHandler struct {
	announcementSvc service.AnnouncementService
}

// NewAnnouncementHandler 创建 AnnouncementHandler
func NewAnnouncementHandler(announcementSvc service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementSvc: announcementSvc}
}

// Create 发布公告
// POST /api/v1/announcements
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req dto.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.announcementSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleAnnouncementError(c, err)
		return
	}

	response.Created(c, result)
}

// ListActive 当前生效的公告
// GET /api/v1/announcements
func (h *AnnouncementHandler) ListActive(c *gin.Context) {
	h.list(c, true)
}

// ListAll 全部公告（含已停用）
// GET /api/v1/admin/announcements
func (h *AnnouncementHandler) ListAll(c *gin.Context) {
	h.list(c, false)
}

// Update 修改或启停公告
// PUT /api/v1/announcements/:id
func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, ok := MustGetPathID(c, "公告")
	if !ok {
		return
	}

	var req dto.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.announcementSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAnnouncementError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除公告
// DELETE /api/v1/announcements/:id
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := MustGetPathID(c, "公告")
	if !ok {
		return
	}

	if err := h.announcementSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleAnnouncementError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *AnnouncementHandler) list(c *gin.Context, activeOnly bool) {
	list, err := h.announcementSvc.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.handleAnnouncementError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

func (h *AnnouncementHandler) handleAnnouncementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAnnouncementNotFound):
		response.NotFound(c, 18002, "公告不存在")
	default:
		response.InternalError(c)
	}
}
