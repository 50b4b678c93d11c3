package model

// Lab 实验室表 — 对应 labs
type Lab struct {
	LabID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lab_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string `gorm:"type:text;not null;default:''"                  json:"description"`
	BaseModel

	Devices []Device `gorm:"foreignKey:LabID;references:LabID" json:"devices,omitempty"`
}

// TableName 指定表名
func (Lab) TableName() string { return "labs" }

// Device 设备表 — 对应 devices
// IsActive=false 表示维护中，不接受新预约
type Device struct {
	DeviceID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"device_id"`
	LabID       string `gorm:"type:uuid;not null;index"                       json:"lab_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	IsActive    bool   `gorm:"not null"                                       json:"is_active"`
	Description string `gorm:"type:text;not null;default:''"                  json:"description"`
	ImageURL    string `gorm:"type:varchar(512);not null;default:''"          json:"image_url"`
	BaseModel

	Lab *Lab `gorm:"foreignKey:LabID;references:LabID" json:"lab,omitempty"`
}

// TableName 指定表名
func (Device) TableName() string { return "devices" }
