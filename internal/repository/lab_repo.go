package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/resitasrav/BookLab-System/internal/model"
)

// LabRepository 实验室数据访问接口
type LabRepository interface {
	Create(ctx context.Context, lab *model.Lab) error
	GetByID(ctx context.Context, id string) (*model.Lab, error)
	List(ctx context.Context) ([]model.Lab, error)
	Update(ctx context.Context, lab *model.Lab) error
	Delete(ctx context.Context, id string) error
}

type labRepo struct {
	db *gorm.DB
}

// NewLabRepo 创建 LabRepository 实例
func NewLabRepo(db *gorm.DB) LabRepository {
	return &labRepo{db: db}
}

func (r *labRepo) Create(ctx context.Context, lab *model.Lab) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(lab).Error
}

func (r *labRepo) GetByID(ctx context.Context, id string) (*model.Lab, error) {
	var lab model.Lab
	if err := r.db.WithContext(ctx).Where("lab_id = ?", id).First(&lab).Error; err != nil {
		return nil, err
	}
	return &lab, nil
}

func (r *labRepo) List(ctx context.Context) ([]model.Lab, error) {
	var labs []model.Lab
	err := r.db.WithContext(ctx).Order("name ASC").Find(&labs).Error
	return labs, err
}

// Update 只更新描述性字段
func (r *labRepo) Update(ctx context.Context, lab *model.Lab) error {
	return r.db.WithContext(ctx).
		Model(&model.Lab{}).
		Where("lab_id = ?", lab.LabID).
		Updates(map[string]interface{}{
			"name":        lab.Name,
			"description": lab.Description,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error
}

func (r *labRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("lab_id = ?", id).Delete(&model.Lab{}).Error
}
