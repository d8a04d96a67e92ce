package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/minato696/controltransmisionesV4/internal/dto"
	"github.com/minato696/controltransmisionesV4/internal/model"
	"github.com/minato696/controltransmisionesV4/internal/repository"
)

// ── 城市模块业务错误 ──

var (
	ErrCityNotFound     = errors.New("城市不存在")
	ErrCityCodeExists   = errors.New("城市代码已被占用")
	ErrCityHasReporters = errors.New("城市下仍有记者，不能删除")
)

// CityService 城市业务接口
type CityService interface {
	List(ctx context.Context, req *dto.CityListRequest) ([]dto.CityResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.CityResponse, error)
	Create(ctx context.Context, req *dto.CreateCityRequest) (*dto.CityResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateCityRequest) (*dto.CityResponse, error)
	// Delete 仅允许删除名下无记者的城市
	Delete(ctx context.Context, id int64) error
}

type cityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCityService 创建 CityService 实例
func NewCityService(repo *repository.Repository, logger *zap.Logger) CityService {
	return &cityService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *cityService) List(ctx context.Context, req *dto.CityListRequest) ([]dto.CityResponse, error) {
	cities, err := s.repo.City.List(ctx, req.IncludeReporters)
	if err != nil {
		s.logger.Error("查询城市列表失败", zap.Error(err))
		return nil, err
	}

	counts, err := s.repo.City.CountReportersByCity(ctx)
	if err != nil {
		s.logger.Error("统计各城市记者数失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CityResponse, 0, len(cities))
	for i := range cities {
		resp := toCityResponse(&cities[i], counts[cities[i].ID])
		if req.IncludeReporters {
			resp.Reporters = make([]dto.ReporterResponse, 0, len(cities[i].Reporters))
			for j := range cities[i].Reporters {
				resp.Reporters = append(resp.Reporters, *toReporterResponse(&cities[i].Reporters[j]))
			}
		}
		result = append(result, *resp)
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *cityService) GetByID(ctx context.Context, id int64) (*dto.CityResponse, error) {
	city, err := s.repo.City.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCityNotFound
		}
		s.logger.Error("查询城市失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	count, err := s.repo.Reporter.CountByCity(ctx, id)
	if err != nil {
		s.logger.Error("统计城市记者数失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return toCityResponse(city, count), nil
}

// ────────────────────── Create ──────────────────────

func (s *cityService) Create(ctx context.Context, req *dto.CreateCityRequest) (*dto.CityResponse, error) {
	// 先查重给出友好错误；并发窗口内撞唯一索引的兜底在 Create 错误分支
	if _, err := s.repo.City.GetByCode(ctx, req.Code); err == nil {
		return nil, ErrCityCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询城市代码失败", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}

	city := &model.City{
		Code:   req.Code,
		Name:   req.Name,
		Active: true,
	}
	if req.Active != nil {
		city.Active = *req.Active
	}
	if err := s.repo.City.Create(ctx, city); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCityCodeExists
		}
		s.logger.Error("创建城市失败", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}

	s.logger.Info("城市已创建", zap.Int64("id", city.ID), zap.String("code", city.Code))
	return toCityResponse(city, 0), nil
}

// ────────────────────── Update ──────────────────────

func (s *cityService) Update(ctx context.Context, id int64, req *dto.UpdateCityRequest) (*dto.CityResponse, error) {
	city, err := s.repo.City.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCityNotFound
		}
		s.logger.Error("查询城市失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		city.Name = *req.Name
	}
	if req.Active != nil {
		city.Active = *req.Active
	}

	if err := s.repo.City.Update(ctx, city); err != nil {
		s.logger.Error("更新城市失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	count, err := s.repo.Reporter.CountByCity(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCityResponse(city, count), nil
}

// ────────────────────── Delete ──────────────────────

func (s *cityService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.City.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCityNotFound
		}
		s.logger.Error("查询城市失败", zap.Int64("id", id), zap.Error(err))
		return err
	}

	count, err := s.repo.Reporter.CountByCity(ctx, id)
	if err != nil {
		s.logger.Error("统计城市记者数失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrCityHasReporters
	}

	if err := s.repo.City.Delete(ctx, id); err != nil {
		s.logger.Error("删除城市失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("城市已删除", zap.Int64("id", id))
	return nil
}

// ── 内部辅助方法 ──

func toCityResponse(c *model.City, reporterCount int64) *dto.CityResponse {
	return &dto.CityResponse{
		ID:            c.ID,
		Code:          c.Code,
		Name:          c.Name,
		Active:        c.Active,
		ReporterCount: reporterCount,
	}
}
