package dto

// ── 管理端 DTO ──

// DashboardResponse 待处理事项计数
type DashboardResponse struct {
	PendingStudents     int64 `json:"pending_students"`
	PendingReservations int64 `json:"pending_reservations"`
	OpenFaults          int64 `json:"open_faults"`
}

// MassMailRequest 群发邮件；UserIDs 与 ReservationIDs 至少提供一个
type MassMailRequest struct {
	UserIDs        []string `json:"user_ids"        binding:"omitempty,dive,uuid"`
	ReservationIDs []string `json:"reservation_ids" binding:"omitempty,dive,uuid"`
	Subject        string   `json:"subject"         binding:"required,max=200"`
	Body           string   `json:"body"            binding:"required,max=10000"`
}

// MassMailResponse 群发结果
type MassMailResponse struct {
	Sent    int      `json:"sent"`
	Skipped int      `json:"skipped"`
	Failed  []string `json:"failed,omitempty"`
}

// CreateAnnouncementRequest 发布公告
type CreateAnnouncementRequest struct {
	Title   string `json:"title"   binding:"required,max=200"`
	Content string `json:"content" binding:"omitempty,max=10000"`
}

// UpdateAnnouncementRequest 修改公告
type UpdateAnnouncementRequest struct {
	Title    *string `json:"title"     binding:"omitempty,max=200"`
	Content  *string `json:"content"   binding:"omitempty,max=10000"`
	IsActive *bool   `json:"is_active"`
}

// AnnouncementResponse 公告
type AnnouncementResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// ExportRequest 预约导出筛选
type ExportRequest struct {
	Status   string `form:"status"`
	LabID    string `form:"lab_id"    binding:"omitempty,uuid"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}
