package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/service"
	"github.com/resitasrav/BookLab-System/pkg/response"
)

// LabHandler 实验室 HTTP 处理器
type LabHandler struct {
	labSvc service.LabService
}

// NewLabHandler 创建 LabHandler
func NewLabHandler(labSvc service.LabService) *LabHandler {
	return &LabHandler{labSvc: labSvc}
}

// Create 创建实验室
// POST /api/v1/labs
func (h *LabHandler) Create(c *gin.Context) {
	var req dto.CreateLabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.labSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleLabDeviceError(c, err)
		return
	}

	response.Created(c, result)
}

// GetLab 获取实验室及其设备
// GET /api/v1/labs/:id
func (h *LabHandler) GetLab(c *gin.Context) {
	id, ok := MustGetPathID(c, "实验室")
	if !ok {
		return
	}

	result, err := h.labSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleLabDeviceError(c, err)
		return
	}

	response.OK(c, result)
}

// List 实验室列表
// GET /api/v1/labs
func (h *LabHandler) List(c *gin.Context) {
	labs, err := h.labSvc.List(c.Request.Context())
	if err != nil {
		handleLabDeviceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": labs})
}

// Update 修改实验室
// PUT /api/v1/labs/:id
func (h *LabHandler) Update(c *gin.Context) {
	id, ok := MustGetPathID(c, "实验室")
	if !ok {
		return
	}

	var req dto.UpdateLabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.labSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleLabDeviceError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除实验室
// DELETE /api/v1/labs/:id
func (h *LabHandler) Delete(c *gin.Context) {
	id, ok := MustGetPathID(c, "实验室")
	if !ok {
		return
	}

	if err := h.labSvc.Delete(c.Request.Context(), id); err != nil {
		handleLabDeviceError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleLabDeviceError 实验室与设备共用的错误映射
func handleLabDeviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLabNotFound):
		response.NotFound(c, 15001, "实验室不存在")
	case errors.Is(err, service.ErrLabHasDevices):
		response.Conflict(c, 15002, "实验室下仍有设备，无法删除")
	case errors.Is(err, service.ErrDeviceNotFound):
		response.NotFound(c, 15003, "设备不存在")
	case errors.Is(err, service.ErrDeviceInUse):
		response.Conflict(c, 15004, "设备存在预约记录，无法删除")
	default:
		response.InternalError(c)
	}
}
