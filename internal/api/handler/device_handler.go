package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/service"
	"github.com/resitasrav/BookLab-System/pkg/response"
)

// DeviceHandler 设备 HTTP 处理器
type DeviceHandler struct {
	deviceSvc service.DeviceService
}

// NewDeviceHandler 创建 DeviceHandler
func NewDeviceHandler(deviceSvc service.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceSvc: deviceSvc}
}

// Create 创建设备
// POST /api/v1/devices
func (h *DeviceHandler) Create(c *gin.Context) {
	var req dto.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.deviceSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleLabDeviceError(c, err)
		return
	}

	response.Created(c, result)
}

// GetDevice 获取设备详情
// GET /api/v1/devices/:id
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	id, ok := MustGetPathID(c, "设备")
	if !ok {
		return
	}

	result, err := h.deviceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleLabDeviceError(c, err)
		return
	}

	response.OK(c, result)
}

// List 设备列表
// GET /api/v1/devices?lab_id=&include_inactive=
func (h *DeviceHandler) List(c *gin.Context) {
	var req dto.DeviceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	devices, err := h.deviceSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleLabDeviceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": devices})
}

// Update 修改设备描述信息
// PUT /api/v1/devices/:id
func (h *DeviceHandler) Update(c *gin.Context) {
	id, ok := MustGetPathID(c, "设备")
	if !ok {
		return
	}

	var req dto.UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.deviceSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleLabDeviceError(c, err)
		return
	}

	response.OK(c, result)
}

// Deactivate 设备进入维护状态
// POST /api/v1/devices/:id/deactivate
func (h *DeviceHandler) Deactivate(c *gin.Context) {
	h.toggle(c, h.deviceSvc.Deactivate)
}

// Activate 设备恢复可预约
// POST /api/v1/devices/:id/activate
func (h *DeviceHandler) Activate(c *gin.Context) {
	h.toggle(c, h.deviceSvc.Activate)
}

// Reactivate 恢复可预约并清除全部未解决故障
// POST /api/v1/devices/:id/reactivate
func (h *DeviceHandler) Reactivate(c *gin.Context) {
	id, ok := MustGetPathID(c, "设备")
	if !ok {
		return
	}

	staffID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.deviceSvc.ReactivateAndClearFaults(c.Request.Context(), staffID, id)
	if err != nil {
		handleLabDeviceError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除设备
// DELETE /api/v1/devices/:id
func (h *DeviceHandler) Delete(c *gin.Context) {
	id, ok := MustGetPathID(c, "设备")
	if !ok {
		return
	}

	if err := h.deviceSvc.Delete(c.Request.Context(), id); err != nil {
		handleLabDeviceError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *DeviceHandler) toggle(c *gin.Context, fn func(ctx context.Context, id string) (*dto.DeviceResponse, error)) {
	id, ok := MustGetPathID(c, "设备")
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), id)
	if err != nil {
		handleLabDeviceError(c, err)
		return
	}

	response.OK(c, result)
}
