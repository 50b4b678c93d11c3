package dto

// ── 用户档案 DTO ──

// ProfileListRequest 档案列表查询参数
type ProfileListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending_student active_student cancelled"`
}

// UpdateProfileRequest 修改本人档案
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=100"`
	Phone     *string `json:"phone"      binding:"omitempty,max=20"`
	PhotoURL  *string `json:"photo_url"  binding:"omitempty,url,max=512"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student staff admin"`
}

// ProfileResponse 用户与档案合并视图
type ProfileResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	IsActive        bool   `json:"is_active"`
	SchoolNumber    string `json:"school_number"`
	Phone           string `json:"phone"`
	PhotoURL        string `json:"photo_url,omitempty"`
	Status          string `json:"status"`
	EmailVerified   bool   `json:"email_verified"`
	EmailVerifiedAt string `json:"email_verified_at,omitempty"`
	CreatedAt       string `json:"created_at"`
}
