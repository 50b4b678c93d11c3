package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/service"
	"github.com/resitasrav/BookLab-System/pkg/response"
)

// FaultHandler 故障报告 HTTP 处理器
type FaultHandler struct {
	faultSvc service.FaultService
}

// NewFaultHandler 创建 FaultHandler
func NewFaultHandler(faultSvc service.FaultService) *FaultHandler {
	return &FaultHandler{faultSvc: faultSvc}
}

// Report 报告设备故障
// POST /api/v1/faults
func (h *FaultHandler) Report(c *gin.Context) {
	var req dto.ReportFaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.faultSvc.Report(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleFaultError(c, err)
		return
	}

	response.Created(c, result)
}

// Resolve 标记故障已解决
// POST /api/v1/faults/:id/resolve
func (h *FaultHandler) Resolve(c *gin.Context) {
	id, ok := MustGetPathID(c, "故障")
	if !ok {
		return
	}

	staffID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.faultSvc.Resolve(c.Request.Context(), staffID, id)
	if err != nil {
		h.handleFaultError(c, err)
		return
	}

	response.OK(c, result)
}

// Reopen 重新打开已解决的故障
// POST /api/v1/faults/:id/reopen
func (h *FaultHandler) Reopen(c *gin.Context) {
	id, ok := MustGetPathID(c, "故障")
	if !ok {
		return
	}

	result, err := h.faultSvc.Reopen(c.Request.Context(), id)
	if err != nil {
		h.handleFaultError(c, err)
		return
	}

	response.OK(c, result)
}

// GetFault 获取故障详情
// GET /api/v1/faults/:id
func (h *FaultHandler) GetFault(c *gin.Context) {
	id, ok := MustGetPathID(c, "故障")
	if !ok {
		return
	}

	result, err := h.faultSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleFaultError(c, err)
		return
	}

	response.OK(c, result)
}

// List 故障列表，未解决优先
// GET /api/v1/faults
func (h *FaultHandler) List(c *gin.Context) {
	var req dto.FaultListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.faultSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleFaultError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

func (h *FaultHandler) handleFaultError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFaultNotFound):
		response.NotFound(c, 16001, "故障报告不存在")
	case errors.Is(err, service.ErrFaultAlreadyResolved):
		response.Conflict(c, 16002, "故障已解决")
	case errors.Is(err, service.ErrFaultNotResolved):
		response.Conflict(c, 16003, "故障尚未解决")
	case errors.Is(err, service.ErrEmptyDescription):
		response.BadRequest(c, 16004, "故障描述不能为空")
	case errors.Is(err, service.ErrDeviceNotFound):
		response.NotFound(c, 16005, "设备不存在")
	default:
		response.InternalError(c)
	}
}
