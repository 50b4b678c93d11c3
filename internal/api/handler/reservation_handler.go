package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/resitasrav/BookLab-System/internal/booking"
	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/service"
	pkgerrors "github.com/resitasrav/BookLab-System/pkg/errors"
	"github.com/resitasrav/BookLab-System/pkg/response"
)

// ReservationHandler 预约模块 HTTP 处理器
type ReservationHandler struct {
	reservationSvc service.ReservationService
}

// NewReservationHandler 创建 ReservationHandler
func NewReservationHandler(reservationSvc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc}
}

// Create 创建预约
// POST /api/v1/reservations
func (h *ReservationHandler) Create(c *gin.Context) {
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.reservationSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.Created(c, result)
}

// Cancel 预约人取消预约
// POST /api/v1/reservations/:id/cancel
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := MustGetPathID(c, "预约")
	if !ok {
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.reservationSvc.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OK(c, result)
}

// Transition 工作人员变更预约状态
// POST /api/v1/reservations/:id/transition
func (h *ReservationHandler) Transition(c *gin.Context) {
	id, ok := MustGetPathID(c, "预约")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	staffID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.reservationSvc.Transition(c.Request.Context(), staffID, id, req.Action)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OK(c, result)
}

// GetReservation 获取预约详情
// GET /api/v1/reservations/:id
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := MustGetPathID(c, "预约")
	if !ok {
		return
	}

	result, err := h.reservationSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMine 我的预约（进行中 / 历史）
// GET /api/v1/reservations/me
func (h *ReservationHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.reservationSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OK(c, result)
}

// Summary 我的预约概览
// GET /api/v1/reservations/me/summary
func (h *ReservationHandler) Summary(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.reservationSvc.Summary(c.Request.Context(), userID)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OK(c, result)
}

// List 工作人员查看预约列表，待审批优先
// GET /api/v1/reservations
func (h *ReservationHandler) List(c *gin.Context) {
	var req dto.ReservationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.reservationSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Availability 查询设备某时段是否可预约
// GET /api/v1/schedule/devices/:id/availability?date=&start_time=&end_time=
func (h *ReservationHandler) Availability(c *gin.Context) {
	id, ok := MustGetPathID(c, "设备")
	if !ok {
		return
	}

	var req dto.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reservationSvc.Availability(c.Request.Context(), id, &req)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OK(c, result)
}

// handleReservationError 统一处理预约模块业务错误
func (h *ReservationHandler) handleReservationError(c *gin.Context, err error) {
	switch {
	// 输入
	case errors.Is(err, booking.ErrMalformedTimeInput):
		response.BadRequest(c, 13001, "日期或时间格式无效")
	case errors.Is(err, booking.ErrUnknownAction):
		response.BadRequest(c, 13002, "未知的状态操作")
	case errors.Is(err, service.ErrInvalidStatusFilter):
		response.BadRequest(c, 13003, "无效的状态筛选条件")
	// 规则
	case errors.Is(err, booking.ErrDeviceUnavailable):
		response.BadRequest(c, 13011, "设备维护中，暂不可预约")
	case errors.Is(err, booking.ErrPastTimeRejected):
		response.BadRequest(c, 13012, "不能预约已经过去的时间")
	case errors.Is(err, booking.ErrLeadTimeTooShort):
		response.BadRequest(c, 13013, "距离开始时间过近，无法预约")
	case errors.Is(err, booking.ErrInvalidInterval):
		response.BadRequest(c, 13014, "结束时间必须晚于开始时间")
	case errors.Is(err, booking.ErrDurationOutOfRange):
		response.BadRequest(c, 13015, "预约时长超出允许范围")
	// 冲突
	case errors.Is(err, service.ErrSlotTaken):
		response.Conflict(c, 13021, "该时段已被预约，请选择其他时间")
	case errors.Is(err, service.ErrUserDoubleBooked):
		response.Conflict(c, 13022, "您在该时段已有其他预约")
	case errors.Is(err, service.ErrSlotBusy):
		response.Conflict(c, 13023, "该时段正在被其他请求处理，请稍后重试")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13024, "预约已被其他操作修改，请刷新后重试")
	// 状态流转
	case errors.Is(err, booking.ErrInvalidTransition):
		response.Conflict(c, 13031, "当前状态不允许该操作")
	case errors.Is(err, booking.ErrCancellationWindowClosed):
		response.Conflict(c, 13032, "距离开始时间过近，已无法取消")
	case errors.Is(err, service.ErrNotReservationOwner):
		response.Forbidden(c, 13033, "只能取消自己的预约")
	case errors.Is(err, service.ErrUserInactive):
		response.Forbidden(c, 13034, "账户已停用，无法预约")
	// 不存在
	case errors.Is(err, service.ErrReservationNotFound):
		response.NotFound(c, 13041, "预约不存在")
	case errors.Is(err, service.ErrDeviceNotFound):
		response.NotFound(c, 13042, "设备不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 13043, "用户不存在")
	default:
		response.InternalError(c)
	}
}
