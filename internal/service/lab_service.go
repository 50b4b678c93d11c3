package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/internal/repository"
)

// ── 实验室模块业务错误 ──

var (
	ErrLabNotFound   = errors.New("实验室不存在")
	ErrLabHasDevices = errors.New("实验室下仍有设备，无法删除")
)

// LabService 实验室业务接口
type LabService interface {
	Create(ctx context.Context, req *dto.CreateLabRequest) (*dto.LabResponse, error)
	GetByID(ctx context.Context, id string) (*dto.LabResponse, error)
	List(ctx context.Context) ([]dto.LabResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateLabRequest) (*dto.LabResponse, error)
	Delete(ctx context.Context, id string) error
}

type labService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLabService 创建 LabService 实例
func NewLabService(repo *repository.Repository, logger *zap.Logger) LabService {
	return &labService{repo: repo, logger: logger}
}

func (s *labService) Create(ctx context.Context, req *dto.CreateLabRequest) (*dto.LabResponse, error) {
	lab := &model.Lab{Name: req.Name, Description: req.Description}
	if err := s.repo.Lab.Create(ctx, lab); err != nil {
		s.logger.Error("创建实验室失败", zap.Error(err))
		return nil, err
	}
	return toLabResponse(lab, nil), nil
}

// GetByID 附带该实验室的全部设备（含停用）
func (s *labService) GetByID(ctx context.Context, id string) (*dto.LabResponse, error) {
	lab, err := s.getLab(ctx, id)
	if err != nil {
		return nil, err
	}

	devices, err := s.repo.Device.List(ctx, id, true)
	if err != nil {
		s.logger.Error("列出实验室设备失败", zap.String("lab_id", id), zap.Error(err))
		return nil, err
	}
	return toLabResponse(lab, devices), nil
}

func (s *labService) List(ctx context.Context) ([]dto.LabResponse, error) {
	labs, err := s.repo.Lab.List(ctx)
	if err != nil {
		s.logger.Error("列出实验室失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.LabResponse, 0, len(labs))
	for i := range labs {
		out = append(out, *toLabResponse(&labs[i], nil))
	}
	return out, nil
}

func (s *labService) Update(ctx context.Context, id string, req *dto.UpdateLabRequest) (*dto.LabResponse, error) {
	lab, err := s.getLab(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		lab.Name = *req.Name
	}
	if req.Description != nil {
		lab.Description = *req.Description
	}
	if err := s.repo.Lab.Update(ctx, lab); err != nil {
		s.logger.Error("更新实验室失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toLabResponse(lab, nil), nil
}

func (s *labService) Delete(ctx context.Context, id string) error {
	if _, err := s.getLab(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.Device.CountByLab(ctx, id)
	if err != nil {
		s.logger.Error("统计实验室设备失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if n > 0 {
		return ErrLabHasDevices
	}
	if err := s.repo.Lab.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrLabHasDevices
		}
		s.logger.Error("删除实验室失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *labService) getLab(ctx context.Context, id string) (*model.Lab, error) {
	lab, err := s.repo.Lab.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabNotFound
		}
		s.logger.Error("查询实验室失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return lab, nil
}

func toLabResponse(lab *model.Lab, devices []model.Device) *dto.LabResponse {
	resp := &dto.LabResponse{
		ID:          lab.LabID,
		Name:        lab.Name,
		Description: lab.Description,
		CreatedAt:   formatTime(lab.CreatedAt),
	}
	for i := range devices {
		resp.Devices = append(resp.Devices, *toDeviceResponse(&devices[i], nil))
	}
	return resp
}
