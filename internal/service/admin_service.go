package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/resitasrav/BookLab-System/internal/booking"
	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/internal/repository"
	"github.com/resitasrav/BookLab-System/pkg/mailer"
)

var ErrNoRecipients = errors.New("未选择收件人")

// AdminService 管理端业务接口
type AdminService interface {
	// Dashboard 待审核学生、待审批预约与未解决故障计数
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	// MassMail 向所选用户或预约所有者群发邮件，同一地址只发一次
	MassMail(ctx context.Context, req *dto.MassMailRequest) (*dto.MassMailResponse, error)
}

type adminService struct {
	repo     *repository.Repository
	notifier Notifier
	logger   *zap.Logger
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(repo *repository.Repository, notifier Notifier, logger *zap.Logger) AdminService {
	return &adminService{repo: repo, notifier: notifier, logger: logger}
}

func (s *adminService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	students, err := s.repo.Profile.CountByStatus(ctx, model.ProfilePendingStudent)
	if err != nil {
		s.logger.Error("统计待审核学生失败", zap.Error(err))
		return nil, err
	}
	pending, err := s.repo.Reservation.CountByStatus(ctx, string(booking.StatusPending))
	if err != nil {
		s.logger.Error("统计待审批预约失败", zap.Error(err))
		return nil, err
	}
	faults, err := s.repo.Fault.CountOpen(ctx)
	if err != nil {
		s.logger.Error("统计未解决故障失败", zap.Error(err))
		return nil, err
	}
	return &dto.DashboardResponse{
		PendingStudents:     students,
		PendingReservations: pending,
		OpenFaults:          faults,
	}, nil
}

func (s *adminService) MassMail(ctx context.Context, req *dto.MassMailRequest) (*dto.MassMailResponse, error) {
	if len(req.UserIDs) == 0 && len(req.ReservationIDs) == 0 {
		return nil, ErrNoRecipients
	}

	targets, err := s.collectTargets(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &dto.MassMailResponse{}
	seen := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		addr, ok := t.ContactEmail()
		if !ok {
			resp.Skipped++
			continue
		}
		key := strings.ToLower(addr)
		if _, dup := seen[key]; dup {
			resp.Skipped++
			continue
		}
		seen[key] = struct{}{}

		if err := s.notifier.Send(ctx, mailer.Message{To: addr, Subject: req.Subject, Body: req.Body}); err != nil {
			s.logger.Warn("群发邮件投递失败", zap.String("to", addr), zap.Error(err))
			resp.Failed = append(resp.Failed, addr)
			continue
		}
		resp.Sent++
	}

	s.logger.Info("群发邮件完成",
		zap.Int("sent", resp.Sent),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", len(resp.Failed)),
	)
	return resp, nil
}

// collectTargets 用户在前、预约在后，保持请求中的顺序
func (s *adminService) collectTargets(ctx context.Context, req *dto.MassMailRequest) ([]model.Contactable, error) {
	var targets []model.Contactable

	if len(req.UserIDs) > 0 {
		users, err := s.repo.User.ListByIDs(ctx, req.UserIDs)
		if err != nil {
			s.logger.Error("查询收件用户失败", zap.Error(err))
			return nil, err
		}
		for i := range users {
			targets = append(targets, &users[i])
		}
	}

	for _, id := range req.ReservationIDs {
		r, err := s.repo.Reservation.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			s.logger.Error("查询预约失败", zap.String("reservation_id", id), zap.Error(err))
			return nil, err
		}
		targets = append(targets, r)
	}
	return targets, nil
}
