package model

import "strings"

// 角色
const (
	RoleStudent = "student"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

// User 用户身份表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string `gorm:"type:varchar(150);not null;uniqueIndex"         json:"username"`
	FirstName    string `gorm:"type:varchar(100);not null;default:''"          json:"first_name"`
	LastName     string `gorm:"type:varchar(100);not null;default:''"          json:"last_name"`
	Email        string `gorm:"type:varchar(254);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	IsActive     bool   `gorm:"not null;default:false"                         json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// DisplayName 姓名，缺省时退回用户名
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	return u.Username
}

// IsStaff 工作人员或管理员
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

// ContactEmail 实现 Contactable
func (u *User) ContactEmail() (string, bool) {
	if u == nil {
		return "", false
	}
	email := strings.TrimSpace(u.Email)
	return email, email != ""
}
