package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/internal/repository"
)

// ── 故障模块业务错误 ──

var (
	ErrFaultNotFound        = errors.New("故障报告不存在")
	ErrFaultAlreadyResolved = errors.New("故障已处理")
	ErrFaultNotResolved     = errors.New("故障尚未处理")
	ErrEmptyDescription     = errors.New("故障描述不能为空")
)

// FaultService 故障报告业务接口
// 故障只做信息提示，是否可预约只看设备启用状态
type FaultService interface {
	Report(ctx context.Context, userID string, req *dto.ReportFaultRequest) (*dto.FaultReportResponse, error)
	Resolve(ctx context.Context, staffID, faultID string) (*dto.FaultReportResponse, error)
	Reopen(ctx context.Context, faultID string) (*dto.FaultReportResponse, error)
	GetByID(ctx context.Context, id string) (*dto.FaultReportResponse, error)
	List(ctx context.Context, req *dto.FaultListRequest) ([]dto.FaultReportResponse, int64, error)
}

type faultService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewFaultService 创建 FaultService 实例
func NewFaultService(repo *repository.Repository, logger *zap.Logger) FaultService {
	return &faultService{repo: repo, logger: logger, now: time.Now}
}

func (s *faultService) Report(ctx context.Context, userID string, req *dto.ReportFaultRequest) (*dto.FaultReportResponse, error) {
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		return nil, ErrEmptyDescription
	}

	device, err := s.repo.Device.GetByID(ctx, req.DeviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		s.logger.Error("查询设备失败", zap.String("device_id", req.DeviceID), zap.Error(err))
		return nil, err
	}

	fault := &model.FaultReport{
		DeviceID:    device.DeviceID,
		UserID:      userID,
		Description: desc,
	}
	if err := s.repo.Fault.Create(ctx, fault); err != nil {
		s.logger.Error("创建故障报告失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("收到设备故障报告",
		zap.String("fault_id", fault.FaultID),
		zap.String("device_id", device.DeviceID),
		zap.String("user_id", userID),
	)
	fault.Device = device
	return toFaultReportResponse(fault), nil
}

func (s *faultService) Resolve(ctx context.Context, staffID, faultID string) (*dto.FaultReportResponse, error) {
	fault, err := s.getFault(ctx, faultID)
	if err != nil {
		return nil, err
	}
	if fault.Resolved {
		return nil, ErrFaultAlreadyResolved
	}

	at := s.now().UTC()
	fault.Resolved = true
	fault.ResolvedAt = &at
	fault.ResolvedBy = &staffID
	if err := s.repo.Fault.Update(ctx, fault); err != nil {
		s.logger.Error("处理故障失败", zap.String("id", faultID), zap.Error(err))
		return nil, err
	}
	return toFaultReportResponse(fault), nil
}

func (s *faultService) Reopen(ctx context.Context, faultID string) (*dto.FaultReportResponse, error) {
	fault, err := s.getFault(ctx, faultID)
	if err != nil {
		return nil, err
	}
	if !fault.Resolved {
		return nil, ErrFaultNotResolved
	}

	fault.Resolved = false
	fault.ResolvedAt = nil
	fault.ResolvedBy = nil
	if err := s.repo.Fault.Update(ctx, fault); err != nil {
		s.logger.Error("重新打开故障失败", zap.String("id", faultID), zap.Error(err))
		return nil, err
	}
	return toFaultReportResponse(fault), nil
}

func (s *faultService) GetByID(ctx context.Context, id string) (*dto.FaultReportResponse, error) {
	fault, err := s.getFault(ctx, id)
	if err != nil {
		return nil, err
	}
	return toFaultReportResponse(fault), nil
}

func (s *faultService) List(ctx context.Context, req *dto.FaultListRequest) ([]dto.FaultReportResponse, int64, error) {
	list, total, err := s.repo.Fault.List(ctx, repository.FaultFilter{
		DeviceID: req.DeviceID,
		Resolved: req.Resolved,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出故障报告失败", zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.FaultReportResponse, 0, len(list))
	for i := range list {
		out = append(out, *toFaultReportResponse(&list[i]))
	}
	return out, total, nil
}

func (s *faultService) getFault(ctx context.Context, id string) (*model.FaultReport, error) {
	fault, err := s.repo.Fault.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFaultNotFound
		}
		s.logger.Error("查询故障报告失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return fault, nil
}
