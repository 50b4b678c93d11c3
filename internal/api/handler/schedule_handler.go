package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/resitasrav/BookLab-System/internal/booking"
	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/service"
	"github.com/resitasrav/BookLab-System/pkg/response"
)

// ScheduleHandler 日历查询 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// DeviceDay 单设备单日日历
// GET /api/v1/schedule/devices/:id?date=&status=
func (h *ScheduleHandler) DeviceDay(c *gin.Context) {
	id, ok := MustGetPathID(c, "设备")
	if !ok {
		return
	}

	var req dto.DeviceDayRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	events, err := h.scheduleSvc.DeviceDay(c.Request.Context(), id, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// LabRange 实验室区间日历
// GET /api/v1/schedule/labs/:id?from=&to=&status=
func (h *ScheduleHandler) LabRange(c *gin.Context) {
	id, ok := MustGetPathID(c, "实验室")
	if !ok {
		return
	}

	var req dto.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	events, err := h.scheduleSvc.LabRange(c.Request.Context(), id, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// AllRange 全部设备区间日历
// GET /api/v1/schedule?from=&to=&status=
func (h *ScheduleHandler) AllRange(c *gin.Context) {
	var req dto.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	events, err := h.scheduleSvc.AllRange(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// Statuses 日历图例，按生命周期顺序
// GET /api/v1/schedule/statuses
func (h *ScheduleHandler) Statuses(c *gin.Context) {
	list := make([]dto.StatusLegend, 0, len(booking.AllStatuses))
	for _, st := range booking.AllStatuses {
		list = append(list, dto.StatusLegend{Status: string(st), Label: st.Label(), Color: st.Color()})
	}
	response.OK(c, gin.H{"list": list})
}

// handleScheduleError 统一处理日历查询错误
func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 14001, "日期区间无效")
	case errors.Is(err, service.ErrInvalidScope):
		response.BadRequest(c, 14002, "不支持的查询范围")
	case errors.Is(err, service.ErrInvalidStatusFilter):
		response.BadRequest(c, 14003, "无效的状态筛选条件")
	case errors.Is(err, booking.ErrMalformedTimeInput):
		response.BadRequest(c, 14004, "日期格式无效")
	case errors.Is(err, service.ErrDeviceNotFound):
		response.NotFound(c, 14005, "设备不存在")
	case errors.Is(err, service.ErrLabNotFound):
		response.NotFound(c, 14006, "实验室不存在")
	default:
		response.InternalError(c)
	}
}
