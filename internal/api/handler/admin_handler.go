package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/service"
	"github.com/resitasrav/BookLab-System/pkg/response"
)

// AdminHandler 工作人员后台 HTTP 处理器
type AdminHandler struct {
	adminSvc service.AdminService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// Dashboard 后台待办计数
// GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	result, err := h.adminSvc.Dashboard(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// MassMail 群发邮件
// POST /api/v1/admin/mail
func (h *AdminHandler) MassMail(c *gin.Context) {
	var req dto.MassMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.adminSvc.MassMail(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNoRecipients) {
			response.BadRequest(c, 18001, "未选择收件人")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
