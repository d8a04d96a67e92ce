package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/minato696/controltransmisionesV4/internal/model"
)

// CityRepository 城市数据访问接口
type CityRepository interface {
	Create(ctx context.Context, city *model.City) error
	GetByID(ctx context.Context, id int64) (*model.City, error)
	GetByCode(ctx context.Context, code string) (*model.City, error)
	List(ctx context.Context, includeReporters bool) ([]model.City, error)
	CountActive(ctx context.Context) (int64, error)
	// CountReportersByCity 各城市的记者数，city_id → count
	CountReportersByCity(ctx context.Context) (map[int64]int64, error)
	Update(ctx context.Context, city *model.City) error
	Delete(ctx context.Context, id int64) error
}

type cityRepo struct {
	db *gorm.DB
}

// NewCityRepo 创建 CityRepository 实现
func NewCityRepo(db *gorm.DB) CityRepository {
	return &cityRepo{db: db}
}

func (r *cityRepo) Create(ctx context.Context, city *model.City) error {
	return r.db.WithContext(ctx).Create(city).Error
}

func (r *cityRepo) GetByID(ctx context.Context, id int64) (*model.City, error) {
	var city model.City
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&city).Error
	if err != nil {
		return nil, err
	}
	return &city, nil
}

func (r *cityRepo) GetByCode(ctx context.Context, code string) (*model.City, error) {
	var city model.City
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&city).Error
	if err != nil {
		return nil, err
	}
	return &city, nil
}

func (r *cityRepo) List(ctx context.Context, includeReporters bool) ([]model.City, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if includeReporters {
		q = q.Preload("Reporters", func(db *gorm.DB) *gorm.DB {
			return db.Order("reporters.name ASC")
		})
	}
	var cities []model.City
	err := q.Find(&cities).Error
	return cities, err
}

func (r *cityRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.City{}).
		Where("active = ?", true).
		Count(&count).Error
	return count, err
}

func (r *cityRepo) CountReportersByCity(ctx context.Context) (map[int64]int64, error) {
	var rows []struct {
		CityID int64
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Reporter{}).
		Select("city_id, COUNT(*) AS total").
		Group("city_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.CityID] = row.Total
	}
	return counts, nil
}

func (r *cityRepo) Update(ctx context.Context, city *model.City) error {
	return r.db.WithContext(ctx).Save(city).Error
}

func (r *cityRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.City{}).Error
}
