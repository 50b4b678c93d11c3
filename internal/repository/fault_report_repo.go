package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/resitasrav/BookLab-System/internal/model"
)

// FaultFilter 故障列表筛选条件
type FaultFilter struct {
	DeviceID string
	Resolved *bool
}

// FaultReportRepository 故障报告数据访问接口
type FaultReportRepository interface {
	Create(ctx context.Context, f *model.FaultReport) error
	GetByID(ctx context.Context, id string) (*model.FaultReport, error)
	List(ctx context.Context, filter FaultFilter, offset, limit int) ([]model.FaultReport, int64, error)
	// ListOpenByDevices 指定设备的未解决故障，按时间倒序
	ListOpenByDevices(ctx context.Context, deviceIDs []string) ([]model.FaultReport, error)
	Update(ctx context.Context, f *model.FaultReport) error
	// ResolveOpenByDevice 将设备全部未解决故障标记为已解决，返回影响行数
	ResolveOpenByDevice(ctx context.Context, deviceID, staffID string, at time.Time) (int64, error)
	CountOpen(ctx context.Context) (int64, error)
}

type faultReportRepo struct {
	db *gorm.DB
}

// NewFaultReportRepo 创建 FaultReportRepository 实例
func NewFaultReportRepo(db *gorm.DB) FaultReportRepository {
	return &faultReportRepo{db: db}
}

func (r *faultReportRepo) Create(ctx context.Context, f *model.FaultReport) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(f).Error
}

func (r *faultReportRepo) GetByID(ctx context.Context, id string) (*model.FaultReport, error) {
	var f model.FaultReport
	err := r.db.WithContext(ctx).
		Preload("Device.Lab").
		Preload("Reporter").
		Where("fault_id = ?", id).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *faultReportRepo) List(ctx context.Context, filter FaultFilter, offset, limit int) ([]model.FaultReport, int64, error) {
	var (
		list  []model.FaultReport
		total int64
	)
	db := r.db.WithContext(ctx).Model(&model.FaultReport{})
	if filter.DeviceID != "" {
		db = db.Where("device_id = ?", filter.DeviceID)
	}
	if filter.Resolved != nil {
		db = db.Where("resolved = ?", *filter.Resolved)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Device.Lab").
		Preload("Reporter").
		Order("resolved ASC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *faultReportRepo) ListOpenByDevices(ctx context.Context, deviceIDs []string) ([]model.FaultReport, error) {
	var list []model.FaultReport
	if len(deviceIDs) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).
		Where("device_id IN ? AND resolved = ?", deviceIDs, false).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *faultReportRepo) Update(ctx context.Context, f *model.FaultReport) error {
	return r.db.WithContext(ctx).
		Model(&model.FaultReport{}).
		Where("fault_id = ?", f.FaultID).
		Updates(map[string]interface{}{
			"resolved":    f.Resolved,
			"resolved_at": f.ResolvedAt,
			"resolved_by": f.ResolvedBy,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error
}

func (r *faultReportRepo) ResolveOpenByDevice(ctx context.Context, deviceID, staffID string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.FaultReport{}).
		Where("device_id = ? AND resolved = ?", deviceID, false).
		Updates(map[string]interface{}{
			"resolved":    true,
			"resolved_at": at,
			"resolved_by": staffID,
			"updated_at":  gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *faultReportRepo) CountOpen(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.FaultReport{}).Where("resolved = ?", false).Count(&n).Error
	return n, err
}
