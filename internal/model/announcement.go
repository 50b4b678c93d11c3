package model

// Announcement 公告表 — 对应 announcements
type Announcement struct {
	AnnouncementID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"announcement_id"`
	Title          string `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string `gorm:"type:text;not null;default:''"                  json:"content"`
	IsActive       bool   `gorm:"not null"                                       json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Announcement) TableName() string { return "announcements" }
