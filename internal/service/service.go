package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/resitasrav/BookLab-System/config"
	"github.com/resitasrav/BookLab-System/internal/booking"
	"github.com/resitasrav/BookLab-System/internal/repository"
	"github.com/resitasrav/BookLab-System/pkg/jwt"
	"github.com/resitasrav/BookLab-System/pkg/mailer"
)

// Notifier 通知出口：Send 同步返回错误，Dispatch 后台投递且不返回错误
type Notifier interface {
	Send(ctx context.Context, msg mailer.Message) error
	Dispatch(msg mailer.Message)
}

// TokenBlacklist Token 黑名单存储，由 Redis 实现
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Profile      ProfileService
	Lab          LabService
	Device       DeviceService
	Fault        FaultService
	Reservation  ReservationService
	Schedule     ScheduleService
	Export       ExportService
	Admin        AdminService
	Announcement AnnouncementService
}

// Deps 构造 Service 聚合所需的外部依赖；Blacklist 可为 nil
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	JWT       *jwt.Manager
	Locker    SlotLocker
	Notifier  Notifier
	Blacklist TokenBlacklist
	Logger    *zap.Logger
}

// NewService 创建 Service 聚合
func NewService(d Deps) (*Service, error) {
	policy, err := PolicyFromConfig(&d.Config.Booking)
	if err != nil {
		return nil, err
	}
	rules := booking.NewRuleEngine(policy)

	return &Service{
		Auth:         NewAuthService(&d.Config.Registration, d.Repo, d.JWT, d.Blacklist, d.Notifier, d.Logger),
		Profile:      NewProfileService(d.Repo, d.Logger),
		Lab:          NewLabService(d.Repo, d.Logger),
		Device:       NewDeviceService(d.Repo, d.Logger),
		Fault:        NewFaultService(d.Repo, d.Logger),
		Reservation:  NewReservationService(d.Repo, rules, d.Locker, d.Notifier, d.Logger),
		Schedule:     NewScheduleService(d.Repo, rules, d.Config.Booking.MaxRangeDays, d.Logger),
		Export:       NewExportService(d.Repo, NewXLSXRenderer(), policy.Location, d.Logger),
		Admin:        NewAdminService(d.Repo, d.Notifier, d.Logger),
		Announcement: NewAnnouncementService(d.Repo, d.Logger),
	}, nil
}

// PolicyFromConfig 由配置构造预约规则参数
func PolicyFromConfig(cfg *config.BookingConfig) (booking.Policy, error) {
	loc, err := cfg.Location()
	if err != nil {
		return booking.Policy{}, fmt.Errorf("加载预约时区失败: %w", err)
	}
	return booking.Policy{
		MinDuration: time.Duration(cfg.MinDurationHours) * time.Hour,
		MaxDuration: time.Duration(cfg.MaxDurationHours) * time.Hour,
		Cutoff:      time.Duration(cfg.CutoffHours) * time.Hour,
		Location:    loc,
	}, nil
}
