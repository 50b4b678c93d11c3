package dto

// ── 预约模块 DTO ──

// CreateReservationRequest 创建预约；时间为 HH:MM，会被对齐到半小时网格
type CreateReservationRequest struct {
	DeviceID  string `json:"device_id"  binding:"required,uuid"`
	Date      string `json:"date"       binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time"   binding:"required"`
}

// TransitionRequest 工作人员状态操作
type TransitionRequest struct {
	Action string `json:"action" binding:"required"`
}

// ReservationListRequest 管理端预约列表
type ReservationListRequest struct {
	PaginationRequest
	Status   string `form:"status"`
	DeviceID string `form:"device_id" binding:"omitempty,uuid"`
	LabID    string `form:"lab_id"    binding:"omitempty,uuid"`
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

// ReservationResponse 预约信息
type ReservationResponse struct {
	ID          string     `json:"id"`
	DeviceID    string     `json:"device_id"`
	DeviceName  string     `json:"device_name,omitempty"`
	LabName     string     `json:"lab_name,omitempty"`
	User        *UserBrief `json:"user,omitempty"`
	Date        string     `json:"date"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Status      string     `json:"status"`
	StatusLabel string     `json:"status_label"`
	ApprovedBy  *UserBrief `json:"approved_by,omitempty"`
	Version     int        `json:"version"`
	CreatedAt   string     `json:"created_at"`
}

// MyReservationsResponse 本人预约，按是否仍有效拆分
type MyReservationsResponse struct {
	Active []ReservationResponse `json:"active"`
	Past   []ReservationResponse `json:"past"`
}

// ReservationSummaryResponse 首页摘要
type ReservationSummaryResponse struct {
	ActiveCount int                  `json:"active_count"`
	Next        *ReservationResponse `json:"next,omitempty"`
}
