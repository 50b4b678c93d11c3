package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/resitasrav/BookLab-System/internal/model"
)

// ProfileRepository 用户档案数据访问接口
type ProfileRepository interface {
	Create(ctx context.Context, p *model.Profile) error
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	// GetByUserIDForUpdate 行级锁读取，必须在事务中调用
	GetByUserIDForUpdate(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, p *model.Profile) error
	List(ctx context.Context, status string, offset, limit int) ([]model.Profile, int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo 创建 ProfileRepository 实例
func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, p *model.Profile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) GetByUserIDForUpdate(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) Update(ctx context.Context, p *model.Profile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *profileRepo) List(ctx context.Context, status string, offset, limit int) ([]model.Profile, int64, error) {
	var (
		profiles []model.Profile
		total    int64
	)
	db := r.db.WithContext(ctx).Model(&model.Profile{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&profiles).Error
	return profiles, total, err
}

func (r *profileRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Profile{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
