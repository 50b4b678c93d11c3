package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/internal/repository"
)

// ── 设备模块业务错误 ──

var (
	ErrDeviceNotFound = errors.New("设备不存在")
	ErrDeviceInUse    = errors.New("设备存在预约记录，无法删除")
)

// DeviceService 设备业务接口
type DeviceService interface {
	Create(ctx context.Context, req *dto.CreateDeviceRequest) (*dto.DeviceResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DeviceResponse, error)
	List(ctx context.Context, req *dto.DeviceListRequest) ([]dto.DeviceResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateDeviceRequest) (*dto.DeviceResponse, error)
	// Deactivate 进入维护状态，不再接受新预约
	Deactivate(ctx context.Context, id string) (*dto.DeviceResponse, error)
	// Activate 仅恢复可预约，不处理故障记录
	Activate(ctx context.Context, id string) (*dto.DeviceResponse, error)
	// ReactivateAndClearFaults 恢复可预约，并将该设备全部未解决故障标记为已解决
	ReactivateAndClearFaults(ctx context.Context, staffID, id string) (*dto.ReactivateDeviceResponse, error)
	// Delete 存在预约时拒绝删除
	Delete(ctx context.Context, id string) error
}

type deviceService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewDeviceService 创建 DeviceService 实例
func NewDeviceService(repo *repository.Repository, logger *zap.Logger) DeviceService {
	return &deviceService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── CRUD ──────────────────────

func (s *deviceService) Create(ctx context.Context, req *dto.CreateDeviceRequest) (*dto.DeviceResponse, error) {
	lab, err := s.repo.Lab.GetByID(ctx, req.LabID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabNotFound
		}
		s.logger.Error("查询实验室失败", zap.String("lab_id", req.LabID), zap.Error(err))
		return nil, err
	}

	device := &model.Device{
		LabID:       lab.LabID,
		Name:        req.Name,
		IsActive:    true,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := s.repo.Device.Create(ctx, device); err != nil {
		s.logger.Error("创建设备失败", zap.Error(err))
		return nil, err
	}
	device.Lab = lab
	return toDeviceResponse(device, nil), nil
}

func (s *deviceService) GetByID(ctx context.Context, id string) (*dto.DeviceResponse, error) {
	device, err := s.getDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withFaults(ctx, device)
}

func (s *deviceService) List(ctx context.Context, req *dto.DeviceListRequest) ([]dto.DeviceResponse, error) {
	devices, err := s.repo.Device.List(ctx, req.LabID, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出设备失败", zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(devices))
	for i := range devices {
		ids = append(ids, devices[i].DeviceID)
	}
	faults, err := s.repo.Fault.ListOpenByDevices(ctx, ids)
	if err != nil {
		s.logger.Error("查询未解决故障失败", zap.Error(err))
		return nil, err
	}
	byDevice := make(map[string][]model.FaultReport, len(faults))
	for _, f := range faults {
		byDevice[f.DeviceID] = append(byDevice[f.DeviceID], f)
	}

	out := make([]dto.DeviceResponse, 0, len(devices))
	for i := range devices {
		out = append(out, *toDeviceResponse(&devices[i], byDevice[devices[i].DeviceID]))
	}
	return out, nil
}

func (s *deviceService) Update(ctx context.Context, id string, req *dto.UpdateDeviceRequest) (*dto.DeviceResponse, error) {
	device, err := s.getDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		device.Name = *req.Name
	}
	if req.Description != nil {
		device.Description = *req.Description
	}
	if req.ImageURL != nil {
		device.ImageURL = *req.ImageURL
	}
	if err := s.repo.Device.Update(ctx, device); err != nil {
		s.logger.Error("更新设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.withFaults(ctx, device)
}

func (s *deviceService) Delete(ctx context.Context, id string) error {
	if _, err := s.getDevice(ctx, id); err != nil {
		return err
	}
	used, err := s.repo.Reservation.ExistsByDevice(ctx, id)
	if err != nil {
		s.logger.Error("检查设备预约失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if used {
		return ErrDeviceInUse
	}
	if err := s.repo.Device.Delete(ctx, id); err != nil {
		// 检查与删除之间插入的预约由外键兜底
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrDeviceInUse
		}
		s.logger.Error("删除设备失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("设备已删除", zap.String("device_id", id))
	return nil
}

// ────────────────────── 启停用 ──────────────────────

func (s *deviceService) Deactivate(ctx context.Context, id string) (*dto.DeviceResponse, error) {
	return s.setActive(ctx, id, false)
}

func (s *deviceService) Activate(ctx context.Context, id string) (*dto.DeviceResponse, error) {
	return s.setActive(ctx, id, true)
}

func (s *deviceService) setActive(ctx context.Context, id string, active bool) (*dto.DeviceResponse, error) {
	device, err := s.getDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Device.SetActive(ctx, id, active); err != nil {
		s.logger.Error("更新设备状态失败", zap.String("id", id), zap.Bool("active", active), zap.Error(err))
		return nil, err
	}
	device.IsActive = active
	s.logger.Info("设备状态已更新", zap.String("device_id", id), zap.Bool("active", active))
	return s.withFaults(ctx, device)
}

func (s *deviceService) ReactivateAndClearFaults(ctx context.Context, staffID, id string) (*dto.ReactivateDeviceResponse, error) {
	device, err := s.getDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	var resolved int64
	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Device.SetActive(ctx, id, true); err != nil {
			return err
		}
		n, err := tx.Fault.ResolveOpenByDevice(ctx, id, staffID, s.now().UTC())
		if err != nil {
			return err
		}
		resolved = n
		return nil
	})
	if err != nil {
		s.logger.Error("重新启用设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	device.IsActive = true
	s.logger.Info("设备已重新启用并清除故障",
		zap.String("device_id", id),
		zap.String("staff_id", staffID),
		zap.Int64("resolved_faults", resolved),
	)
	return &dto.ReactivateDeviceResponse{
		Device:         *toDeviceResponse(device, nil),
		ResolvedFaults: resolved,
	}, nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *deviceService) getDevice(ctx context.Context, id string) (*model.Device, error) {
	device, err := s.repo.Device.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		s.logger.Error("查询设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return device, nil
}

func (s *deviceService) withFaults(ctx context.Context, device *model.Device) (*dto.DeviceResponse, error) {
	faults, err := s.repo.Fault.ListOpenByDevices(ctx, []string{device.DeviceID})
	if err != nil {
		s.logger.Error("查询未解决故障失败", zap.String("device_id", device.DeviceID), zap.Error(err))
		return nil, err
	}
	return toDeviceResponse(device, faults), nil
}
