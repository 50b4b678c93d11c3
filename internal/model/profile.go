package model

import "time"

// 学生档案状态
const (
	ProfilePendingStudent = "pending_student"
	ProfileActiveStudent  = "active_student"
	ProfileCancelled      = "cancelled"
)

// Profile 用户档案表 — 对应 profiles，与 users 一对一
type Profile struct {
	UserID           string     `gorm:"type:uuid;primaryKey"                                json:"user_id"`
	SchoolNumber     string     `gorm:"type:varchar(20);not null;default:''"                json:"school_number"`
	Phone            string     `gorm:"type:varchar(15);not null;default:''"                json:"phone"`
	PhotoURL         string     `gorm:"type:varchar(512);not null;default:''"               json:"photo_url"`
	Status           string     `gorm:"type:varchar(20);not null;default:'pending_student'" json:"status"`
	EmailVerified    bool       `gorm:"not null;default:false"                              json:"email_verified"`
	EmailVerifiedAt  *time.Time `json:"email_verified_at,omitempty"`
	VerificationCode *string    `gorm:"type:varchar(6)"                                     json:"-"`
	CodeIssuedAt     *time.Time `json:"-"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Profile) TableName() string { return "profiles" }

// ContactEmail 实现 Contactable
func (p *Profile) ContactEmail() (string, bool) {
	if p == nil {
		return "", false
	}
	return p.User.ContactEmail()
}
