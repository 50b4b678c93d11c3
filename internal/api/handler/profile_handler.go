package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/service"
	"github.com/resitasrav/BookLab-System/pkg/response"
)

// ProfileHandler 学生档案 HTTP 处理器
type ProfileHandler struct {
	profileSvc service.ProfileService
}

// NewProfileHandler 创建 ProfileHandler
func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// List 按状态分页查看学生档案
// GET /api/v1/profiles?status=&page=&page_size=
func (h *ProfileHandler) List(c *gin.Context) {
	var req dto.ProfileListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.profileSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetProfile 查看指定用户档案
// GET /api/v1/profiles/:id
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := MustGetPathID(c, "用户")
	if !ok {
		return
	}

	result, err := h.profileSvc.GetByUserID(c.Request.Context(), id)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OK(c, result)
}

// Activate 审核通过
// POST /api/v1/profiles/:id/activate
func (h *ProfileHandler) Activate(c *gin.Context) {
	h.changeStatus(c, h.profileSvc.Activate)
}

// Deactivate 退回待审核
// POST /api/v1/profiles/:id/deactivate
func (h *ProfileHandler) Deactivate(c *gin.Context) {
	h.changeStatus(c, h.profileSvc.Deactivate)
}

// Cancel 注销档案
// POST /api/v1/profiles/:id/cancel
func (h *ProfileHandler) Cancel(c *gin.Context) {
	h.changeStatus(c, h.profileSvc.Cancel)
}

// UpdateMe 修改本人档案
// PUT /api/v1/profiles/me
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.profileSvc.UpdateMe(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OK(c, result)
}

// AssignRole 调整用户角色，仅管理员可用
func (h *ProfileHandler) AssignRole(c *gin.Context) {
	id, ok := MustGetPathID(c, "用户")
	if !ok {
		return
	}

	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.profileSvc.AssignRole(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ProfileHandler) changeStatus(c *gin.Context, fn func(ctx context.Context, userID string) (*dto.ProfileResponse, error)) {
	id, ok := MustGetPathID(c, "用户")
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), id)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ProfileHandler) handleProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		response.NotFound(c, 12001, "用户档案不存在")
	case errors.Is(err, service.ErrInvalidPhone):
		response.BadRequest(c, 12002, "手机号只能包含数字")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12003, "用户不存在")
	case errors.Is(err, service.ErrUserSelfRoleChange):
		response.Forbidden(c, 12004, "不能修改自己的角色")
	default:
		response.InternalError(c)
	}
}
