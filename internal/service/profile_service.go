package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/internal/repository"
)

var (
	ErrProfileNotFound    = errors.New("用户档案不存在")
	ErrUserSelfRoleChange = errors.New("不能修改自己的角色")
)

// ProfileService 用户档案业务接口
type ProfileService interface {
	List(ctx context.Context, req *dto.ProfileListRequest) ([]dto.ProfileResponse, int64, error)
	GetByUserID(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	// Activate 审核通过：档案转为 active_student 且允许登录
	Activate(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	// Deactivate 退回待审核并禁止登录
	Deactivate(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	// Cancel 注销档案并禁止登录
	Cancel(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	UpdateMe(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	// AssignRole 管理员调整他人角色，不能修改自己
	AssignRole(ctx context.Context, userID string, req *dto.AssignRoleRequest, callerID string) (*dto.ProfileResponse, error)
	// EnsureAdmins 启动时将配置中的邮箱对应账号提升为管理员并允许登录
	EnsureAdmins(ctx context.Context, emails []string) error
}

type profileService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProfileService 创建 ProfileService 实例
func NewProfileService(repo *repository.Repository, logger *zap.Logger) ProfileService {
	return &profileService{repo: repo, logger: logger}
}

func (s *profileService) List(ctx context.Context, req *dto.ProfileListRequest) ([]dto.ProfileResponse, int64, error) {
	list, total, err := s.repo.Profile.List(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户档案失败", zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.ProfileResponse, 0, len(list))
	for i := range list {
		if list[i].User == nil {
			continue
		}
		out = append(out, *toProfileResponse(list[i].User, &list[i]))
	}
	return out, total, nil
}

func (s *profileService) GetByUserID(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	profile, err := s.getProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(profile.User, profile), nil
}

func (s *profileService) Activate(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	return s.setStatus(ctx, userID, model.ProfileActiveStudent, true)
}

func (s *profileService) Deactivate(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	return s.setStatus(ctx, userID, model.ProfilePendingStudent, false)
}

func (s *profileService) Cancel(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	return s.setStatus(ctx, userID, model.ProfileCancelled, false)
}

// setStatus 档案状态与登录开关同一事务更新
func (s *profileService) setStatus(ctx context.Context, userID, status string, active bool) (*dto.ProfileResponse, error) {
	var profile *model.Profile
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		p, err := tx.Profile.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		p.Status = status
		if err := tx.Profile.Update(ctx, p); err != nil {
			return err
		}
		if err := tx.User.SetActive(ctx, userID, active); err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			s.logger.Error("更新档案状态失败", zap.String("user_id", userID), zap.String("status", status), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("档案状态已更新",
		zap.String("user_id", userID),
		zap.String("status", status),
		zap.Bool("active", active),
	)
	return s.GetByUserID(ctx, profile.UserID)
}

func (s *profileService) UpdateMe(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if req.Phone != nil && !isDigits(*req.Phone) {
		return nil, ErrInvalidPhone
	}

	profile, err := s.getProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user := profile.User

	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if req.FirstName != nil || req.LastName != nil {
			if req.FirstName != nil {
				user.FirstName = strings.TrimSpace(*req.FirstName)
			}
			if req.LastName != nil {
				user.LastName = strings.TrimSpace(*req.LastName)
			}
			if err := tx.User.Update(ctx, user); err != nil {
				return err
			}
		}
		if req.Phone != nil {
			profile.Phone = *req.Phone
		}
		if req.PhotoURL != nil {
			profile.PhotoURL = *req.PhotoURL
		}
		return tx.Profile.Update(ctx, profile)
	})
	if err != nil {
		s.logger.Error("更新个人档案失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toProfileResponse(user, profile), nil
}

// ────────────────────── 角色 ──────────────────────

func (s *profileService) AssignRole(ctx context.Context, userID string, req *dto.AssignRoleRequest, callerID string) (*dto.ProfileResponse, error) {
	if userID == callerID {
		return nil, ErrUserSelfRoleChange
	}

	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		user, err := tx.User.GetByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		user.Role = req.Role
		return tx.User.Update(ctx, user)
	})
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.Error("分配角色失败", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("角色已变更",
		zap.String("user_id", userID),
		zap.String("role", req.Role),
		zap.String("by", callerID),
	)
	return s.GetByUserID(ctx, userID)
}

func (s *profileService) EnsureAdmins(ctx context.Context, emails []string) error {
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		user, err := s.repo.User.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// 账号尚未注册，下次启动再处理
				s.logger.Warn("初始管理员账号不存在", zap.String("email", email))
				continue
			}
			return err
		}
		if user.Role == model.RoleAdmin && user.IsActive {
			continue
		}
		user.Role = model.RoleAdmin
		user.IsActive = true
		if err := s.repo.User.Update(ctx, user); err != nil {
			s.logger.Error("提升初始管理员失败", zap.String("email", email), zap.Error(err))
			return err
		}
		s.logger.Info("已提升为管理员", zap.String("user_id", user.UserID), zap.String("email", email))
	}
	return nil
}

func (s *profileService) getProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.repo.Profile.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("查询用户档案失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if profile.User == nil {
		user, err := s.repo.User.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		profile.User = user
	}
	return profile, nil
}
