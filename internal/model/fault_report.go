package model

import "time"

// FaultReport 设备故障报告表 — 对应 fault_reports
// 故障不阻止预约，只有设备 IsActive 才决定是否可预约
type FaultReport struct {
	FaultID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"fault_id"`
	DeviceID    string     `gorm:"type:uuid;not null;index"                       json:"device_id"`
	UserID      string     `gorm:"type:uuid;not null"                             json:"user_id"`
	Description string     `gorm:"type:text;not null"                             json:"description"`
	Resolved    bool       `gorm:"not null;default:false"                         json:"resolved"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy  *string    `gorm:"type:uuid"                                      json:"resolved_by,omitempty"`
	BaseModel

	Device   *Device `gorm:"foreignKey:DeviceID;references:DeviceID" json:"device,omitempty"`
	Reporter *User   `gorm:"foreignKey:UserID;references:UserID"     json:"reporter,omitempty"`
}

// TableName 指定表名
func (FaultReport) TableName() string { return "fault_reports" }

// ContactEmail 实现 Contactable，联系报告人
func (f *FaultReport) ContactEmail() (string, bool) {
	if f == nil {
		return "", false
	}
	return f.Reporter.ContactEmail()
}
