package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/resitasrav/BookLab-System/config"
	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/pkg/jwt"
)

// ── 测试辅助 ──

type authFixture struct {
	db        *memDB
	svc       AuthService
	cfg       *config.RegistrationConfig
	jwtMgr    *jwt.Manager
	blacklist *mockBlacklist
	notifier  *mockNotifier
}

func (f *authFixture) setNow(t time.Time) {
	f.svc.(*authService).now = func() time.Time { return t }
}

func setupAuthService() *authFixture {
	db := newMemDB()
	cfg := &config.RegistrationConfig{
		SchoolEmailDomain: "@ogr.btu.edu.tr",
		CodeTTL:           15 * time.Minute,
	}
	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
	f := &authFixture{
		db:        db,
		cfg:       cfg,
		jwtMgr:    jwtMgr,
		blacklist: newMockBlacklist(),
		notifier:  &mockNotifier{},
	}
	f.svc = NewAuthService(cfg, db.repository(), jwtMgr, f.blacklist, f.notifier, zap.NewNop())
	f.svc.(*authService).newCode = func() (string, error) { return "123456", nil }
	f.setNow(baseNow)
	return f
}

// addLoginUser 写入带密码哈希与档案的用户
func (f *authFixture) addLoginUser(id, username, email, password string, active bool) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := f.db.addUser(id, username, email, model.RoleStudent, active)
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u.PasswordHash = string(hash)
	status := model.ProfilePendingStudent
	if active {
		status = model.ProfileActiveStudent
	}
	f.db.profiles[id] = &model.Profile{UserID: id, Status: status, EmailVerified: true}
}

func (f *authFixture) profile(userID string) model.Profile {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return *f.db.profiles[userID]
}

func (f *authFixture) userActive(userID string) bool {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.users[userID].IsActive
}

func registerReq(username, email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username:     username,
		FirstName:    "Ayşe",
		LastName:     "Yılmaz",
		Email:        email,
		Password:     "password123",
		SchoolNumber: "20230001",
		Phone:        "05551234567",
	}
}

// ────────────────────── Register ──────────────────────

func TestAuthService_Register_Success(t *testing.T) {
	f := setupAuthService()

	resp, err := f.svc.Register(context.Background(), registerReq("ayse", "Ayse@OGR.btu.edu.tr"))
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if resp.Email != "ayse@ogr.btu.edu.tr" || !resp.CodeSent {
		t.Errorf("邮箱应转小写且已发送验证码, 实际=%+v", resp)
	}
	if f.userActive(resp.ID) {
		t.Error("新注册账号不应激活")
	}

	p := f.profile(resp.ID)
	if p.Status != model.ProfilePendingStudent || p.EmailVerified {
		t.Errorf("档案应为待审核且未验证, 实际=%s verified=%v", p.Status, p.EmailVerified)
	}
	if p.VerificationCode == nil || *p.VerificationCode != "123456" {
		t.Error("档案应保存验证码")
	}

	msgs := f.notifier.messages()
	if len(msgs) != 1 || msgs[0].To != "ayse@ogr.btu.edu.tr" {
		t.Fatalf("期望向注册邮箱发送 1 封邮件, 实际=%+v", msgs)
	}
}

func TestAuthService_Register_Rejections(t *testing.T) {
	f := setupAuthService()
	f.addLoginUser("u-1", "mehmet", "mehmet@ogr.btu.edu.tr", "secret123", true)

	phone := registerReq("ali", "ali@ogr.btu.edu.tr")
	phone.Phone = "+90 555"

	tests := []struct {
		name string
		req  *dto.RegisterRequest
		want error
	}{
		{"非学校邮箱", registerReq("ali", "ali@gmail.com"), ErrEmailDomainNotAllowed},
		{"手机号含非数字", phone, ErrInvalidPhone},
		{"邮箱已注册（忽略大小写）", registerReq("ali", "MEHMET@ogr.btu.edu.tr"), ErrEmailTaken},
		{"用户名已占用", registerReq("mehmet", "other@ogr.btu.edu.tr"), ErrUsernameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v, 实际=%v", tt.want, err)
			}
		})
	}
}

func TestAuthService_Register_MailFailureKeepsAccount(t *testing.T) {
	f := setupAuthService()
	f.notifier.sendErr = errors.New("smtp down")

	resp, err := f.svc.Register(context.Background(), registerReq("ayse", "ayse@ogr.btu.edu.tr"))
	if err != nil {
		t.Fatalf("邮件失败不应导致注册失败: %v", err)
	}
	if resp.CodeSent {
		t.Error("期望 CodeSent=false")
	}
	if _, ok := f.db.users[resp.ID]; !ok {
		t.Error("账号应已创建")
	}
}

// ────────────────────── VerifyEmail ──────────────────────

func TestAuthService_VerifyEmail_DoesNotActivateByDefault(t *testing.T) {
	f := setupAuthService()
	ctx := context.Background()
	resp, _ := f.svc.Register(ctx, registerReq("ayse", "ayse@ogr.btu.edu.tr"))

	f.setNow(baseNow.Add(5 * time.Minute))
	v, err := f.svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Email: "ayse@ogr.btu.edu.tr", Code: "123456"})
	if err != nil {
		t.Fatalf("VerifyEmail 应成功: %v", err)
	}
	if !v.EmailVerified || v.Activated {
		t.Errorf("期望已验证但未激活, 实际=%+v", v)
	}
	if f.userActive(resp.ID) {
		t.Error("验证邮箱不应直接开放登录")
	}
	p := f.profile(resp.ID)
	if p.Status != model.ProfilePendingStudent || p.VerificationCode != nil {
		t.Errorf("档案应保持待审核并清除验证码, 实际=%+v", p)
	}

	// 重复验证幂等
	again, err := f.svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Email: "ayse@ogr.btu.edu.tr", Code: "000000"})
	if err != nil || !again.EmailVerified {
		t.Errorf("已验证后再次验证应直接返回, 实际=%+v err=%v", again, err)
	}
}

func TestAuthService_VerifyEmail_AutoActivate(t *testing.T) {
	f := setupAuthService()
	f.cfg.AutoActivateOnVerify = true
	ctx := context.Background()
	resp, _ := f.svc.Register(ctx, registerReq("ayse", "ayse@ogr.btu.edu.tr"))

	v, err := f.svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Email: "ayse@ogr.btu.edu.tr", Code: "123456"})
	if err != nil {
		t.Fatalf("VerifyEmail 应成功: %v", err)
	}
	if !v.Activated || !f.userActive(resp.ID) {
		t.Error("开启自动激活后应同时激活账号")
	}
	if p := f.profile(resp.ID); p.Status != model.ProfileActiveStudent {
		t.Errorf("期望 active_student, 实际=%s", p.Status)
	}
}

func TestAuthService_VerifyEmail_Errors(t *testing.T) {
	f := setupAuthService()
	ctx := context.Background()
	f.svc.Register(ctx, registerReq("ayse", "ayse@ogr.btu.edu.tr"))

	if _, err := f.svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Email: "ayse@ogr.btu.edu.tr", Code: "654321"}); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("期望 ErrInvalidCode, 实际=%v", err)
	}

	f.setNow(baseNow.Add(16 * time.Minute))
	if _, err := f.svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Email: "ayse@ogr.btu.edu.tr", Code: "123456"}); !errors.Is(err, ErrCodeExpired) {
		t.Errorf("期望 ErrCodeExpired, 实际=%v", err)
	}

	if _, err := f.svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Email: "nobody@ogr.btu.edu.tr", Code: "123456"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound, 实际=%v", err)
	}
}

func TestAuthService_ResendCode(t *testing.T) {
	f := setupAuthService()
	ctx := context.Background()
	f.svc.Register(ctx, registerReq("ayse", "ayse@ogr.btu.edu.tr"))

	// 过期后重发，新验证码按新签发时间计算
	f.svc.(*authService).newCode = func() (string, error) { return "777777", nil }
	f.setNow(baseNow.Add(30 * time.Minute))
	if err := f.svc.ResendCode(ctx, &dto.ResendCodeRequest{Email: "ayse@ogr.btu.edu.tr"}); err != nil {
		t.Fatalf("ResendCode 应成功: %v", err)
	}
	if _, err := f.svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Email: "ayse@ogr.btu.edu.tr", Code: "123456"}); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("旧验证码应失效, 实际=%v", err)
	}
	if _, err := f.svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Email: "ayse@ogr.btu.edu.tr", Code: "777777"}); err != nil {
		t.Fatalf("新验证码应可用: %v", err)
	}

	if err := f.svc.ResendCode(ctx, &dto.ResendCodeRequest{Email: "ayse@ogr.btu.edu.tr"}); !errors.Is(err, ErrAlreadyVerified) {
		t.Errorf("期望 ErrAlreadyVerified, 实际=%v", err)
	}
}

func TestAuthService_ResendCode_DeliveryFailed(t *testing.T) {
	f := setupAuthService()
	ctx := context.Background()
	f.svc.Register(ctx, registerReq("ayse", "ayse@ogr.btu.edu.tr"))

	f.notifier.sendErr = errors.New("smtp down")
	if err := f.svc.ResendCode(ctx, &dto.ResendCodeRequest{Email: "ayse@ogr.btu.edu.tr"}); !errors.Is(err, ErrCodeDeliveryFailed) {
		t.Errorf("期望 ErrCodeDeliveryFailed, 实际=%v", err)
	}
}

// ────────────────────── Login / Token ──────────────────────

func TestAuthService_Login(t *testing.T) {
	f := setupAuthService()
	f.addLoginUser("u-1", "mehmet", "mehmet@ogr.btu.edu.tr", "secret123", true)
	f.addLoginUser("u-2", "zeynep", "zeynep@ogr.btu.edu.tr", "secret123", false)
	ctx := context.Background()

	for _, login := range []string{"mehmet", "MEHMET@ogr.btu.edu.tr"} {
		resp, err := f.svc.Login(ctx, &dto.LoginRequest{Login: login, Password: "secret123"})
		if err != nil {
			t.Fatalf("Login(%s) 应成功: %v", login, err)
		}
		if resp.AccessToken == "" || resp.RefreshToken == "" || resp.ExpiresIn != 900 {
			t.Errorf("Token 响应不完整: %+v", resp)
		}
		if resp.User.ID != "u-1" || resp.User.Status != model.ProfileActiveStudent {
			t.Errorf("用户信息不符: %+v", resp.User)
		}
	}

	if _, err := f.svc.Login(ctx, &dto.LoginRequest{Login: "mehmet", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("密码错误期望 ErrInvalidCredentials, 实际=%v", err)
	}
	if _, err := f.svc.Login(ctx, &dto.LoginRequest{Login: "ghost", Password: "secret123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("用户不存在期望 ErrInvalidCredentials, 实际=%v", err)
	}
	if _, err := f.svc.Login(ctx, &dto.LoginRequest{Login: "zeynep", Password: "secret123"}); !errors.Is(err, ErrAccountInactive) {
		t.Errorf("未激活期望 ErrAccountInactive, 实际=%v", err)
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	f := setupAuthService()
	f.addLoginUser("u-1", "mehmet", "mehmet@ogr.btu.edu.tr", "secret123", true)
	ctx := context.Background()

	login, _ := f.svc.Login(ctx, &dto.LoginRequest{Login: "mehmet", Password: "secret123"})

	refreshed, err := f.svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("应签发新的 Refresh Token")
	}

	if _, err := f.svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("旧 Refresh Token 应失效, 实际=%v", err)
	}
	if _, err := f.svc.Refresh(ctx, login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Access Token 不能用于刷新, 实际=%v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := setupAuthService()
	f.addLoginUser("u-1", "mehmet", "mehmet@ogr.btu.edu.tr", "secret123", true)
	ctx := context.Background()

	login, _ := f.svc.Login(ctx, &dto.LoginRequest{Login: "mehmet", Password: "secret123"})
	access, err := f.jwtMgr.ParseToken(login.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken 应成功: %v", err)
	}

	if err := f.svc.Logout(ctx, access, login.RefreshToken); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if revoked, _ := f.blacklist.IsBlacklisted(ctx, access.ID); !revoked {
		t.Error("Access Token 应加入黑名单")
	}
	if _, err := f.svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("登出后 Refresh Token 应失效, 实际=%v", err)
	}

	if err := f.svc.Logout(ctx, nil, ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("缺少 Access Claims 期望 ErrInvalidToken, 实际=%v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	f := setupAuthService()
	f.addLoginUser("u-1", "mehmet", "mehmet@ogr.btu.edu.tr", "secret123", true)

	me, err := f.svc.Me(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if me.Username != "mehmet" || !me.EmailVerified {
		t.Errorf("个人信息不符: %+v", me)
	}
	if _, err := f.svc.Me(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound, 实际=%v", err)
	}
}
