package dto

// ── 实验室与设备 DTO ──

// CreateLabRequest 创建实验室
type CreateLabRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateLabRequest 更新实验室描述性字段
type UpdateLabRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// LabResponse 实验室信息
type LabResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Devices     []DeviceResponse `json:"devices,omitempty"`
	CreatedAt   string           `json:"created_at"`
}

// CreateDeviceRequest 创建设备
type CreateDeviceRequest struct {
	LabID       string `json:"lab_id"      binding:"required,uuid"`
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	ImageURL    string `json:"image_url"   binding:"omitempty,url,max=512"`
}

// UpdateDeviceRequest 更新设备描述性字段
type UpdateDeviceRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	ImageURL    *string `json:"image_url"   binding:"omitempty,url,max=512"`
}

// DeviceListRequest 设备列表查询参数
type DeviceListRequest struct {
	LabID           string `form:"lab_id"           binding:"omitempty,uuid"`
	IncludeInactive bool   `form:"include_inactive"`
}

// DeviceResponse 设备信息，FaultNote 为最近一条未解决故障
type DeviceResponse struct {
	ID          string `json:"id"`
	LabID       string `json:"lab_id"`
	LabName     string `json:"lab_name,omitempty"`
	Name        string `json:"name"`
	IsActive    bool   `json:"is_active"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	FaultNote   string `json:"fault_note,omitempty"`
	OpenFaults  int    `json:"open_faults"`
}

// ReactivateDeviceResponse 重新启用并清除故障的结果
type ReactivateDeviceResponse struct {
	Device         DeviceResponse `json:"device"`
	ResolvedFaults int64          `json:"resolved_faults"`
}
