package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/resitasrav/BookLab-System/config"
	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/internal/repository"
	"github.com/resitasrav/BookLab-System/pkg/jwt"
	"github.com/resitasrav/BookLab-System/pkg/mailer"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials    = errors.New("用户名或密码错误")
	ErrAccountInactive       = errors.New("账号尚未激活")
	ErrEmailDomainNotAllowed = errors.New("只允许使用学校邮箱注册")
	ErrEmailTaken            = errors.New("该邮箱已被注册")
	ErrUsernameTaken         = errors.New("该用户名已被使用")
	ErrInvalidPhone          = errors.New("手机号只能包含数字")
	ErrInvalidCode           = errors.New("验证码错误")
	ErrCodeExpired           = errors.New("验证码已过期")
	ErrAlreadyVerified       = errors.New("邮箱已验证")
	ErrCodeDeliveryFailed    = errors.New("验证码邮件发送失败")
	ErrInvalidToken          = errors.New("Token 无效")
)

const verificationCodeDigits = 6

// AuthService 认证业务接口
type AuthService interface {
	// Register 创建未激活账号并发送邮箱验证码
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) (*dto.VerifyEmailResponse, error)
	ResendCode(ctx context.Context, req *dto.ResendCodeRequest) error
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 使当前 Access Token（及可选的 Refresh Token）失效
	Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error
	Me(ctx context.Context, userID string) (*dto.ProfileResponse, error)
}

type authService struct {
	cfg       *config.RegistrationConfig
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	notifier  Notifier
	logger    *zap.Logger

	now     func() time.Time
	newCode func() (string, error)
}

// NewAuthService 创建 AuthService 实例；blacklist 为 nil 时登出只在客户端生效
func NewAuthService(
	cfg *config.RegistrationConfig,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	notifier Notifier,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
		newCode:   randomCode,
	}
}

// ────────────────────── 注册与邮箱验证 ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if d := strings.ToLower(s.cfg.SchoolEmailDomain); d != "" && !strings.HasSuffix(email, d) {
		return nil, ErrEmailDomainNotAllowed
	}
	if !isDigits(req.Phone) {
		return nil, ErrInvalidPhone
	}

	// 1. 唯一性检查，数据库唯一索引兜底
	if err := s.ensureUnique(ctx, req.Username, email); err != nil {
		return nil, err
	}

	// 2. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	code, err := s.newCode()
	if err != nil {
		s.logger.Error("生成验证码失败", zap.Error(err))
		return nil, err
	}
	issuedAt := s.now().UTC()

	user := &model.User{
		Username:     strings.TrimSpace(req.Username),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
		IsActive:     false,
	}

	// 3. 身份与档案同一事务写入
	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}

		profile, err := tx.Profile.GetByUserID(ctx, user.UserID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile = &model.Profile{UserID: user.UserID, Status: model.ProfilePendingStudent}
			fillProfile(profile, req, code, issuedAt)
			return tx.Profile.Create(ctx, profile)
		case err != nil:
			return err
		}
		fillProfile(profile, req, code, issuedAt)
		return tx.Profile.Update(ctx, profile)
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		s.logger.Error("注册失败", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	// 4. 验证码邮件失败不回滚账号，可重发
	sent := true
	if err := s.sendCode(ctx, user, code); err != nil {
		sent = false
		s.logger.Warn("验证码邮件发送失败", zap.String("user_id", user.UserID), zap.Error(err))
	}

	s.logger.Info("新用户注册", zap.String("user_id", user.UserID), zap.String("username", user.Username))
	return &dto.RegisterResponse{
		ID:       user.UserID,
		Username: user.Username,
		Email:    user.Email,
		CodeSent: sent,
	}, nil
}

// VerifyEmail 校验验证码；是否同时激活账号由 auto_activate_on_verify 决定
func (s *authService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) (*dto.VerifyEmailResponse, error) {
	user, profile, err := s.loadByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if profile.EmailVerified {
		return &dto.VerifyEmailResponse{EmailVerified: true, Activated: user.IsActive}, nil
	}

	if profile.VerificationCode == nil || *profile.VerificationCode != req.Code {
		return nil, ErrInvalidCode
	}
	now := s.now().UTC()
	if profile.CodeIssuedAt == nil || now.Sub(*profile.CodeIssuedAt) > s.cfg.CodeTTL {
		return nil, ErrCodeExpired
	}

	activate := s.cfg.AutoActivateOnVerify && profile.Status == model.ProfilePendingStudent
	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		profile.EmailVerified = true
		profile.EmailVerifiedAt = &now
		profile.VerificationCode = nil
		profile.CodeIssuedAt = nil
		if activate {
			profile.Status = model.ProfileActiveStudent
		}
		if err := tx.Profile.Update(ctx, profile); err != nil {
			return err
		}
		if activate {
			return tx.User.SetActive(ctx, user.UserID, true)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("邮箱验证失败", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("邮箱已验证", zap.String("user_id", user.UserID), zap.Bool("activated", activate))
	return &dto.VerifyEmailResponse{EmailVerified: true, Activated: activate || user.IsActive}, nil
}

func (s *authService) ResendCode(ctx context.Context, req *dto.ResendCodeRequest) error {
	user, profile, err := s.loadByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if profile.EmailVerified {
		return ErrAlreadyVerified
	}

	code, err := s.newCode()
	if err != nil {
		s.logger.Error("生成验证码失败", zap.Error(err))
		return err
	}
	issuedAt := s.now().UTC()
	profile.VerificationCode = &code
	profile.CodeIssuedAt = &issuedAt
	if err := s.repo.Profile.Update(ctx, profile); err != nil {
		s.logger.Error("更新验证码失败", zap.String("user_id", user.UserID), zap.Error(err))
		return err
	}

	if err := s.sendCode(ctx, user, code); err != nil {
		s.logger.Warn("验证码邮件发送失败", zap.String("user_id", user.UserID), zap.Error(err))
		return ErrCodeDeliveryFailed
	}
	return nil
}

// ────────────────────── 登录与 Token ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 按用户名或邮箱查询
	login := strings.TrimSpace(req.Login)
	var (
		user *model.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.repo.User.GetByEmail(ctx, login)
	} else {
		user, err = s.repo.User.GetByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 未激活账号拒绝登录
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return s.issueTokens(ctx, user)
}

// Refresh 轮换 Token 对，旧 Refresh Token 进入黑名单
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("检查 Token 黑名单失败", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	s.revoke(ctx, claims)
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error {
	if access == nil {
		return ErrInvalidToken
	}
	s.revoke(ctx, access)
	if refreshToken != "" {
		if claims, err := s.jwtMgr.ParseToken(refreshToken); err == nil && claims.UserID == access.UserID {
			s.revoke(ctx, claims)
		}
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	profile, err := s.optionalProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(user, profile), nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *authService) ensureUnique(ctx context.Context, username, email string) error {
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询邮箱失败", zap.Error(err))
		return err
	}
	if _, err := s.repo.User.GetByUsername(ctx, strings.TrimSpace(username)); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户名失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) loadByEmail(ctx context.Context, email string) (*model.User, *model.Profile, error) {
	user, err := s.repo.User.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, nil, err
	}
	profile, err := s.repo.Profile.GetByUserID(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProfileNotFound
		}
		s.logger.Error("查询档案失败", zap.Error(err))
		return nil, nil, err
	}
	return user, profile, nil
}

func (s *authService) optionalProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.repo.Profile.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询档案失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return profile, nil
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	profile, err := s.optionalProfile(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toProfileResponse(user, profile),
	}, nil
}

// revoke 写入黑名单失败只记录日志
func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if s.blacklist == nil || claims.ID == "" {
		return
	}
	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("Token 加入黑名单失败", zap.String("jti", claims.ID), zap.Error(err))
	}
}

func (s *authService) sendCode(ctx context.Context, user *model.User, code string) error {
	minutes := int(s.cfg.CodeTTL / time.Minute)
	return s.notifier.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "BookLab 邮箱验证码",
		Body: fmt.Sprintf("%s，您好：\n\n您的邮箱验证码为 %s，%d 分钟内有效。\n验证通过后，账号需等待实验室工作人员审核激活。\n",
			user.DisplayName(), code, minutes),
	})
}

func fillProfile(p *model.Profile, req *dto.RegisterRequest, code string, issuedAt time.Time) {
	p.SchoolNumber = strings.TrimSpace(req.SchoolNumber)
	p.Phone = req.Phone
	p.VerificationCode = &code
	p.CodeIssuedAt = &issuedAt
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// randomCode 生成 6 位数字验证码
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", verificationCodeDigits, n.Int64()), nil
}
