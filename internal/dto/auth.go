package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username     string `json:"username"      binding:"required,min=3,max=150"`
	FirstName    string `json:"first_name"    binding:"required,max=100"`
	LastName     string `json:"last_name"     binding:"required,max=100"`
	Email        string `json:"email"         binding:"required,email"`
	Password     string `json:"password"      binding:"required,min=8,max=72"`
	SchoolNumber string `json:"school_number" binding:"required,max=20"`
	Phone        string `json:"phone"         binding:"omitempty,max=20"`
}

// VerifyEmailRequest 邮箱验证请求
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code"  binding:"required,len=6,numeric"`
}

// ResendCodeRequest 重发验证码请求
type ResendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginRequest 登录请求，Login 可以是用户名或邮箱
type LoginRequest struct {
	Login    string `json:"login"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RegisterResponse 注册结果
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	CodeSent bool   `json:"code_sent"`
}

// VerifyEmailResponse 邮箱验证结果
type VerifyEmailResponse struct {
	EmailVerified bool `json:"email_verified"`
	// Activated 是否已可登录；默认策略下需要等待工作人员审核
	Activated bool `json:"activated"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int             `json:"expires_in"`
	User         ProfileResponse `json:"user"`
}
