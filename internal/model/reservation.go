package model

import (
	"fmt"
	"time"

	"github.com/resitasrav/BookLab-System/internal/booking"
)

// Reservation 预约表 — 对应 reservations
// 记录不做物理删除，历史通过状态保留
type Reservation struct {
	ReservationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"reservation_id"`
	UserID        string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	DeviceID      string    `gorm:"type:uuid;not null;index"                       json:"device_id"`
	Date          time.Time `gorm:"type:date;not null"                             json:"date"`
	StartTime     string    `gorm:"type:time;not null"                             json:"start_time"`
	EndTime       string    `gorm:"type:time;not null"                             json:"end_time"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	ApprovedBy    *string   `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	Version       int       `gorm:"not null;default:1"                             json:"version"`
	BaseModel

	User     *User   `gorm:"foreignKey:UserID;references:UserID"     json:"user,omitempty"`
	Device   *Device `gorm:"foreignKey:DeviceID;references:DeviceID" json:"device,omitempty"`
	Approver *User   `gorm:"foreignKey:ApprovedBy;references:UserID" json:"approver,omitempty"`
}

// TableName 指定表名
func (Reservation) TableName() string { return "reservations" }

// Slot 还原为预约时段；数据库 time 列读出为 HH:MM:SS
func (r *Reservation) Slot() (booking.Slot, error) {
	start, err := booking.ParseClock(r.StartTime)
	if err != nil {
		return booking.Slot{}, fmt.Errorf("预约 %s 开始时间损坏: %w", r.ReservationID, err)
	}
	end, err := booking.ParseClock(r.EndTime)
	if err != nil {
		return booking.Slot{}, fmt.Errorf("预约 %s 结束时间损坏: %w", r.ReservationID, err)
	}
	y, m, d := r.Date.Date()
	return booking.Slot{Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Start: start, End: end}, nil
}

// SetSlot 写入时段字段
func (r *Reservation) SetSlot(s booking.Slot) {
	r.Date = s.Date
	r.StartTime = s.Start.String()
	r.EndTime = s.End.String()
}

// ContactEmail 实现 Contactable，联系预约人
func (r *Reservation) ContactEmail() (string, bool) {
	if r == nil {
		return "", false
	}
	return r.User.ContactEmail()
}
