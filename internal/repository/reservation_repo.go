package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/resitasrav/BookLab-System/internal/model"
	pkgerrors "github.com/resitasrav/BookLab-System/pkg/errors"
)

// OverlapQuery 时段重叠查询条件
// DeviceID 与 UserID 至少指定一个；Start/End 为 HH:MM
type OverlapQuery struct {
	DeviceID  string
	UserID    string
	Date      string
	Start     string
	End       string
	Statuses  []string
	ExcludeID string
}

// ReservationFilter 预约列表筛选条件，空值表示不限
type ReservationFilter struct {
	UserID   string
	DeviceID string
	LabID    string
	Statuses []string
	DateFrom string // 含
	DateTo   string // 含
}

// ReservationRepository 预约数据访问接口
type ReservationRepository interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	// CountOverlapping 统计与 [Start, End) 相交的预约数
	CountOverlapping(ctx context.Context, q OverlapQuery) (int64, error)
	// UpdateStatus 乐观锁更新状态与审批人
	UpdateStatus(ctx context.Context, res *model.Reservation) error
	// ListSchedule 日历查询，按日期、开始时间排序，不分页
	ListSchedule(ctx context.Context, f ReservationFilter) ([]model.Reservation, error)
	// List 管理列表，待审批优先
	List(ctx context.Context, f ReservationFilter, offset, limit int) ([]model.Reservation, int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	ExistsByDevice(ctx context.Context, deviceID string) (bool, error)
}

type reservationRepo struct {
	db *gorm.DB
}

// NewReservationRepo 创建 ReservationRepository 实例
func NewReservationRepo(db *gorm.DB) ReservationRepository {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(res).Error
}

func (r *reservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	var res model.Reservation
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Device.Lab").
		Preload("Approver").
		Where("reservation_id = ?", id).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepo) CountOverlapping(ctx context.Context, q OverlapQuery) (int64, error) {
	db := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("date = ?", q.Date).
		Where("start_time < ? AND end_time > ?", q.End, q.Start).
		Where("status IN ?", q.Statuses)
	if q.DeviceID != "" {
		db = db.Where("device_id = ?", q.DeviceID)
	}
	if q.UserID != "" {
		db = db.Where("user_id = ?", q.UserID)
	}
	if q.ExcludeID != "" {
		db = db.Where("reservation_id <> ?", q.ExcludeID)
	}

	var n int64
	err := db.Count(&n).Error
	return n, err
}

func (r *reservationRepo) UpdateStatus(ctx context.Context, res *model.Reservation) error {
	oldVersion := res.Version
	result := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("reservation_id = ? AND version = ?", res.ReservationID, oldVersion).
		Updates(map[string]interface{}{
			"status":      res.Status,
			"approved_by": res.ApprovedBy,
			"version":     oldVersion + 1,
			"updated_at":  gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	res.Version = oldVersion + 1
	return nil
}

func (r *reservationRepo) ListSchedule(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	var list []model.Reservation
	err := r.applyFilter(r.db.WithContext(ctx), f).
		Preload("User").
		Preload("Device.Lab").
		Order("reservations.date ASC, reservations.start_time ASC").
		Find(&list).Error
	return list, err
}

func (r *reservationRepo) List(ctx context.Context, f ReservationFilter, offset, limit int) ([]model.Reservation, int64, error) {
	var (
		list  []model.Reservation
		total int64
	)
	db := r.applyFilter(r.db.WithContext(ctx).Model(&model.Reservation{}), f)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("User").
		Preload("Device.Lab").
		Preload("Approver").
		Order("CASE WHEN reservations.status = 'pending' THEN 0 ELSE 1 END, reservations.date DESC, reservations.start_time DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *reservationRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Reservation{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *reservationRepo) ExistsByDevice(ctx context.Context, deviceID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("device_id = ?", deviceID).
		Count(&n).Error
	return n > 0, err
}

func (r *reservationRepo) applyFilter(db *gorm.DB, f ReservationFilter) *gorm.DB {
	if f.UserID != "" {
		db = db.Where("reservations.user_id = ?", f.UserID)
	}
	if f.DeviceID != "" {
		db = db.Where("reservations.device_id = ?", f.DeviceID)
	}
	if f.LabID != "" {
		db = db.Where("reservations.device_id IN (?)",
			r.db.Model(&model.Device{}).Select("device_id").Where("lab_id = ?", f.LabID))
	}
	if len(f.Statuses) > 0 {
		db = db.Where("reservations.status IN ?", f.Statuses)
	}
	if f.DateFrom != "" {
		db = db.Where("reservations.date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		db = db.Where("reservations.date <= ?", f.DateTo)
	}
	return db
}
