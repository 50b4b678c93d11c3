package dto

// ── 故障报告 DTO ──

// ReportFaultRequest 报告故障
type ReportFaultRequest struct {
	DeviceID    string `json:"device_id"   binding:"required,uuid"`
	Description string `json:"description" binding:"required,min=3,max=2000"`
}

// FaultListRequest 故障列表查询
type FaultListRequest struct {
	PaginationRequest
	DeviceID string `form:"device_id" binding:"omitempty,uuid"`
	Resolved *bool  `form:"resolved"`
}

// FaultReportResponse 故障报告
type FaultReportResponse struct {
	ID          string     `json:"id"`
	DeviceID    string     `json:"device_id"`
	DeviceName  string     `json:"device_name,omitempty"`
	LabName     string     `json:"lab_name,omitempty"`
	Reporter    *UserBrief `json:"reporter,omitempty"`
	Description string     `json:"description"`
	Resolved    bool       `json:"resolved"`
	ResolvedAt  string     `json:"resolved_at,omitempty"`
	CreatedAt   string     `json:"created_at"`
}
