package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/minato696/controltransmisionesV4/internal/model"
)

// ReporterRepository 记者数据访问接口
type ReporterRepository interface {
	Create(ctx context.Context, reporter *model.Reporter) error
	GetByID(ctx context.Context, id int64) (*model.Reporter, error)
	List(ctx context.Context) ([]model.Reporter, error)
	ListByCity(ctx context.Context, cityID int64) ([]model.Reporter, error)
	Count(ctx context.Context) (int64, error)
	CountByCity(ctx context.Context, cityID int64) (int64, error)
	Update(ctx context.Context, reporter *model.Reporter) error
	// DeleteWithDispatches 级联删除：同一事务内先删该记者全部派遣记录，再删记者。
	DeleteWithDispatches(ctx context.Context, id int64) error
}

type reporterRepo struct {
	db *gorm.DB
}

// NewReporterRepo 创建 ReporterRepository 实现
func NewReporterRepo(db *gorm.DB) ReporterRepository {
	return &reporterRepo{db: db}
}

func (r *reporterRepo) Create(ctx context.Context, reporter *model.Reporter) error {
	return r.db.WithContext(ctx).Create(reporter).Error
}

func (r *reporterRepo) GetByID(ctx context.Context, id int64) (*model.Reporter, error) {
	var reporter model.Reporter
	err := r.db.WithContext(ctx).
		Preload("City").
		Where("id = ?", id).
		First(&reporter).Error
	if err != nil {
		return nil, err
	}
	return &reporter, nil
}

func (r *reporterRepo) List(ctx context.Context) ([]model.Reporter, error) {
	var reporters []model.Reporter
	err := r.db.WithContext(ctx).
		Preload("City").
		Order("name ASC").
		Find(&reporters).Error
	return reporters, err
}

func (r *reporterRepo) ListByCity(ctx context.Context, cityID int64) ([]model.Reporter, error) {
	var reporters []model.Reporter
	err := r.db.WithContext(ctx).
		Preload("City").
		Where("city_id = ?", cityID).
		Order("name ASC").
		Find(&reporters).Error
	return reporters, err
}

func (r *reporterRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Reporter{}).Count(&count).Error
	return count, err
}

func (r *reporterRepo) CountByCity(ctx context.Context, cityID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Reporter{}).
		Where("city_id = ?", cityID).
		Count(&count).Error
	return count, err
}

func (r *reporterRepo) Update(ctx context.Context, reporter *model.Reporter) error {
	return r.db.WithContext(ctx).Save(reporter).Error
}

func (r *reporterRepo) DeleteWithDispatches(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reporter_id = ?", id).Delete(&model.Dispatch{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Reporter{}).Error
	})
}
