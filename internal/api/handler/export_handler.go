package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resitasrav/BookLab-System/internal/booking"
	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/service"
	"github.com/resitasrav/BookLab-System/pkg/response"
)

// ExportHandler 导出 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportReservations 工作人员导出预约表
// GET /api/v1/export/reservations?status=&lab_id=&date_from=&date_to=
func (h *ExportHandler) ExportReservations(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	file, err := h.exportSvc.ExportReservations(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.File(c, file.Filename, file.ContentType, file.Data)
}

// ExportMine 导出本人预约记录
// GET /api/v1/export/me
func (h *ExportHandler) ExportMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, err := h.exportSvc.ExportMine(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.File(c, file.Filename, file.ContentType, file.Data)
}

// CalendarFeed 本人预约 iCalendar 订阅
// GET /api/v1/export/me/calendar.ics
func (h *ExportHandler) CalendarFeed(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, err := h.exportSvc.CalendarFeed(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.File(c, file.Filename, file.ContentType, file.Data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidStatusFilter):
		response.BadRequest(c, 17001, "无效的状态筛选条件")
	case errors.Is(err, booking.ErrMalformedTimeInput):
		response.BadRequest(c, 17002, "日期格式无效")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 17003, "用户不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 17004, "导出文件生成失败")
	default:
		response.InternalError(c)
	}
}
