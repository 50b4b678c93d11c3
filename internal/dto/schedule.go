package dto

// ── 日历查询 DTO ──

// DeviceDayRequest 单设备单日查询
type DeviceDayRequest struct {
	Date   string   `form:"date"   binding:"required"`
	Status []string `form:"status"`
}

// RangeRequest 区间查询，To 缺省为 From 起 7 天
type RangeRequest struct {
	From   string   `form:"from"   binding:"required"`
	To     string   `form:"to"`
	Status []string `form:"status"`
}

// AvailabilityRequest 单设备时段可用性查询，时间按半小时规整后判断
type AvailabilityRequest struct {
	Date      string `form:"date"       binding:"required"`
	StartTime string `form:"start_time" binding:"required"`
	EndTime   string `form:"end_time"   binding:"required"`
}

// AvailabilityResponse 时段可用性
type AvailabilityResponse struct {
	DeviceID     string `json:"device_id"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	DeviceActive bool   `json:"device_active"`
	Conflict     bool   `json:"conflict"`
	Available    bool   `json:"available"`
}

// StatusLegend 日历图例
type StatusLegend struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Color  string `json:"color"`
}

// CalendarEvent 日历事件
type CalendarEvent struct {
	ReservationID string `json:"reservation_id"`
	DeviceID      string `json:"device_id"`
	DeviceName    string `json:"device_name"`
	LabName       string `json:"lab_name"`
	Title         string `json:"title"`
	Date          string `json:"date"`
	Start         string `json:"start"`
	End           string `json:"end"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	OwnerName     string `json:"owner_name"`
	Status        string `json:"status"`
	StatusLabel   string `json:"status_label"`
	Color         string `json:"color"`
}
