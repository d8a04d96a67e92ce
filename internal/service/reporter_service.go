package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/minato696/controltransmisionesV4/internal/dto"
	"github.com/minato696/controltransmisionesV4/internal/model"
	"github.com/minato696/controltransmisionesV4/internal/repository"
	"github.com/minato696/controltransmisionesV4/pkg/civildate"
)

// ── 记者模块业务错误 ──

var ErrReporterNotFound = errors.New("记者不存在")

// 记者列表「最近派遣」占位文案，面向西语客户端
const noDispatchLabel = "Sin despachos"

// ReporterService 记者业务接口
type ReporterService interface {
	// List 记者列表；includeLast 为 true 时附带最近派遣与本周派遣数
	List(ctx context.Context, req *dto.ReporterListRequest) ([]dto.ReporterResponse, error)
	// GetByID 记者详情，含其全部派遣历史
	GetByID(ctx context.Context, id int64) (*dto.ReporterDetailResponse, error)
	ListByCityCode(ctx context.Context, code string) ([]dto.ReporterResponse, error)
	Create(ctx context.Context, req *dto.CreateReporterRequest) (*dto.ReporterResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateReporterRequest) (*dto.ReporterResponse, error)
	// Delete 级联删除记者与其全部派遣记录
	Delete(ctx context.Context, id int64) error
}

type reporterService struct {
	repo       *repository.Repository
	normalizer *civildate.Normalizer
	logger     *zap.Logger
}

// NewReporterService 创建 ReporterService 实例
func NewReporterService(repo *repository.Repository, normalizer *civildate.Normalizer, logger *zap.Logger) ReporterService {
	return &reporterService{repo: repo, normalizer: normalizer, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *reporterService) List(ctx context.Context, req *dto.ReporterListRequest) ([]dto.ReporterResponse, error) {
	reporters, err := s.repo.Reporter.List(ctx)
	if err != nil {
		s.logger.Error("查询记者列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReporterResponse, 0, len(reporters))
	for i := range reporters {
		resp := toReporterResponse(&reporters[i])
		if req.IncludeLastDispatch {
			if err := s.attachActivity(ctx, resp); err != nil {
				return nil, err
			}
		}
		result = append(result, *resp)
	}
	return result, nil
}

// attachActivity 补充最近派遣与本周（周一至今天）派遣数
func (s *reporterService) attachActivity(ctx context.Context, resp *dto.ReporterResponse) error {
	last, err := s.repo.Dispatch.LastByReporter(ctx, resp.ID)
	switch {
	case err == nil:
		resp.LastDispatch = formatLastDispatch(last)
	case errors.Is(err, gorm.ErrRecordNotFound):
		resp.LastDispatch = noDispatchLabel
	default:
		s.logger.Error("查询最近派遣失败", zap.Int64("reporter_id", resp.ID), zap.Error(err))
		return err
	}

	today := s.normalizer.Today()
	monday, _ := s.normalizer.WeekBounds(today)
	count, err := s.repo.Dispatch.CountByReporterBetween(ctx, resp.ID, monday, today)
	if err != nil {
		s.logger.Error("统计本周派遣数失败", zap.Int64("reporter_id", resp.ID), zap.Error(err))
		return err
	}
	resp.WeekDispatchCount = &count
	return nil
}

// formatLastDispatch 西语客户端沿用 d/m/yyyy, HH:MM 展示格式；无播出时刻只给日期
func formatLastDispatch(d *model.Dispatch) string {
	dateStr := fmt.Sprintf("%d/%d/%d", d.CivilDay.Day, int(d.CivilDay.Month), d.CivilDay.Year)
	if d.ScheduledTime == "" {
		return dateStr
	}
	return fmt.Sprintf("%s, %s", dateStr, d.ScheduledTime)
}

// ────────────────────── GetByID ──────────────────────

func (s *reporterService) GetByID(ctx context.Context, id int64) (*dto.ReporterDetailResponse, error) {
	reporter, err := s.repo.Reporter.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReporterNotFound
		}
		s.logger.Error("查询记者失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	dispatches, err := s.repo.Dispatch.ListByReporter(ctx, id)
	if err != nil {
		s.logger.Error("查询记者派遣历史失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	detail := &dto.ReporterDetailResponse{
		ReporterResponse: *toReporterResponse(reporter),
		Dispatches:       make([]dto.DispatchResponse, 0, len(dispatches)),
	}
	for i := range dispatches {
		detail.Dispatches = append(detail.Dispatches, *toDispatchResponse(&dispatches[i], false))
	}
	return detail, nil
}

// ────────────────────── ListByCityCode ──────────────────────

func (s *reporterService) ListByCityCode(ctx context.Context, code string) ([]dto.ReporterResponse, error) {
	city, err := s.repo.City.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCityNotFound
		}
		s.logger.Error("查询城市失败", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	reporters, err := s.repo.Reporter.ListByCity(ctx, city.ID)
	if err != nil {
		s.logger.Error("按城市查询记者失败", zap.Int64("city_id", city.ID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReporterResponse, 0, len(reporters))
	for i := range reporters {
		result = append(result, *toReporterResponse(&reporters[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *reporterService) Create(ctx context.Context, req *dto.CreateReporterRequest) (*dto.ReporterResponse, error) {
	if _, err := s.repo.City.GetByID(ctx, req.CityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCityNotFound
		}
		s.logger.Error("查询城市失败", zap.Int64("city_id", req.CityID), zap.Error(err))
		return nil, err
	}

	reporter := &model.Reporter{
		Name:   req.Name,
		CityID: req.CityID,
		Status: model.ReporterStatusActive,
	}
	if req.Status != "" {
		reporter.Status = req.Status
	}
	if err := s.repo.Reporter.Create(ctx, reporter); err != nil {
		s.logger.Error("创建记者失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Reporter.GetByID(ctx, reporter.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("记者已创建", zap.Int64("id", created.ID), zap.String("name", created.Name))
	return toReporterResponse(created), nil
}

// ────────────────────── Update ──────────────────────

func (s *reporterService) Update(ctx context.Context, id int64, req *dto.UpdateReporterRequest) (*dto.ReporterResponse, error) {
	reporter, err := s.repo.Reporter.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReporterNotFound
		}
		s.logger.Error("查询记者失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		reporter.Name = *req.Name
	}
	if req.Status != nil {
		reporter.Status = *req.Status
	}
	if req.CityID != nil {
		if _, err := s.repo.City.GetByID(ctx, *req.CityID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCityNotFound
			}
			return nil, err
		}
		reporter.CityID = *req.CityID
		reporter.City = nil
	}

	if err := s.repo.Reporter.Update(ctx, reporter); err != nil {
		s.logger.Error("更新记者失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Reporter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toReporterResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

func (s *reporterService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Reporter.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReporterNotFound
		}
		s.logger.Error("查询记者失败", zap.Int64("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Reporter.DeleteWithDispatches(ctx, id); err != nil {
		s.logger.Error("删除记者失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("记者已删除（含其派遣记录）", zap.Int64("id", id))
	return nil
}

// ── 内部辅助方法 ──

func toReporterResponse(r *model.Reporter) *dto.ReporterResponse {
	resp := &dto.ReporterResponse{
		ID:     r.ID,
		Name:   r.Name,
		CityID: r.CityID,
		Status: r.Status,
	}
	if r.City != nil {
		resp.City = toCityResponse(r.City, 0)
	}
	return resp
}
