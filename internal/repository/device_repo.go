package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/resitasrav/BookLab-System/internal/model"
)

// DeviceRepository 设备数据访问接口
type DeviceRepository interface {
	Create(ctx context.Context, d *model.Device) error
	GetByID(ctx context.Context, id string) (*model.Device, error)
	// GetByIDForUpdate 行级锁读取，必须在事务中调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.Device, error)
	List(ctx context.Context, labID string, includeInactive bool) ([]model.Device, error)
	CountByLab(ctx context.Context, labID string) (int64, error)
	Update(ctx context.Context, d *model.Device) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type deviceRepo struct {
	db *gorm.DB
}

// NewDeviceRepo 创建 DeviceRepository 实例
func NewDeviceRepo(db *gorm.DB) DeviceRepository {
	return &deviceRepo{db: db}
}

func (r *deviceRepo) Create(ctx context.Context, d *model.Device) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error
}

func (r *deviceRepo) GetByID(ctx context.Context, id string) (*model.Device, error) {
	var d model.Device
	err := r.db.WithContext(ctx).
		Preload("Lab").
		Where("device_id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deviceRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Device, error) {
	var d model.Device
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("device_id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deviceRepo) List(ctx context.Context, labID string, includeInactive bool) ([]model.Device, error) {
	var devices []model.Device
	db := r.db.WithContext(ctx).Preload("Lab")
	if labID != "" {
		db = db.Where("lab_id = ?", labID)
	}
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("name ASC").Find(&devices).Error
	return devices, err
}

func (r *deviceRepo) CountByLab(ctx context.Context, labID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Device{}).Where("lab_id = ?", labID).Count(&n).Error
	return n, err
}

// Update 更新描述性字段，启停用走 SetActive
func (r *deviceRepo) Update(ctx context.Context, d *model.Device) error {
	return r.db.WithContext(ctx).
		Model(&model.Device{}).
		Where("device_id = ?", d.DeviceID).
		Updates(map[string]interface{}{
			"name":        d.Name,
			"description": d.Description,
			"image_url":   d.ImageURL,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error
}

func (r *deviceRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Device{}).
		Where("device_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

// Delete 存在预约引用时数据库外键拒绝删除（ON DELETE RESTRICT）
func (r *deviceRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("device_id = ?", id).Delete(&model.Device{}).Error
}
