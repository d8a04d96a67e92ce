package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/minato696/controltransmisionesV4/internal/dto"
	"github.com/minato696/controltransmisionesV4/internal/model"
	"github.com/minato696/controltransmisionesV4/internal/repository"
	"github.com/minato696/controltransmisionesV4/pkg/civildate"
)

// ── 派遣模块业务错误 ──

var (
	ErrDispatchNotFound = errors.New("派遣记录不存在")
	ErrBlankDispatch    = errors.New("标题、播出时刻与直播时刻均为空，无内容可记录")
)

// DispatchService 派遣记录业务接口
type DispatchService interface {
	// List 范围查询；无法解析的日期/未知城市代码仅记日志并忽略该过滤条件
	List(ctx context.Context, req *dto.DispatchListRequest) ([]dto.DispatchResponse, error)
	// Upsert 按 (reporter, slot, civil_day) 建或改，幂等
	Upsert(ctx context.Context, req *dto.UpsertDispatchRequest) (*dto.DispatchResponse, error)
	// UpsertBatch 批量 Upsert，整批原子，空草稿跳过，按输入顺序返回
	UpsertBatch(ctx context.Context, reqs []dto.UpsertDispatchRequest) ([]dto.DispatchResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.DispatchResponse, error)
	// Update 按 id 点更新（调用方已持有记录身份时使用）
	Update(ctx context.Context, id int64, req *dto.UpdateDispatchRequest) (*dto.DispatchResponse, error)
	Delete(ctx context.Context, id int64) error
}

type dispatchService struct {
	repo       *repository.Repository
	normalizer *civildate.Normalizer
	logger     *zap.Logger
}

// NewDispatchService 创建 DispatchService 实例
func NewDispatchService(repo *repository.Repository, normalizer *civildate.Normalizer, logger *zap.Logger) DispatchService {
	return &dispatchService{repo: repo, normalizer: normalizer, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *dispatchService) List(ctx context.Context, req *dto.DispatchListRequest) ([]dto.DispatchResponse, error) {
	filter := repository.DispatchFilter{}

	// 日期过滤：单日优先于范围；解析失败按约定忽略过滤而非报错
	switch {
	case req.From != "" && req.To != "":
		from, errFrom := s.normalizer.ParseDay(req.From)
		to, errTo := s.normalizer.ParseDay(req.To)
		if errFrom != nil || errTo != nil {
			s.logger.Warn("日期范围无法解析，忽略该过滤条件",
				zap.String("from", req.From), zap.String("to", req.To))
		} else {
			filter.From, filter.To = &from, &to
		}
	case req.Day != "":
		day, err := s.normalizer.ParseDay(req.Day)
		if err != nil {
			s.logger.Warn("日期无法解析，忽略该过滤条件", zap.String("day", req.Day))
		} else {
			filter.From, filter.To = &day, &day
		}
	}

	if req.ReporterID > 0 {
		filter.ReporterID = &req.ReporterID
	}

	if req.CityCode != "" {
		city, err := s.repo.City.GetByCode(ctx, req.CityCode)
		switch {
		case err == nil:
			filter.CityID = &city.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Warn("城市代码不存在，忽略该过滤条件", zap.String("city_code", req.CityCode))
		default:
			s.logger.Error("查询城市失败", zap.String("city_code", req.CityCode), zap.Error(err))
			return nil, err
		}
	}

	dispatches, err := s.repo.Dispatch.Query(ctx, filter)
	if err != nil {
		s.logger.Error("查询派遣记录失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DispatchResponse, 0, len(dispatches))
	for i := range dispatches {
		result = append(result, *toDispatchResponse(&dispatches[i], false))
	}
	return result, nil
}

// ────────────────────── Upsert ──────────────────────

func (s *dispatchService) Upsert(ctx context.Context, req *dto.UpsertDispatchRequest) (*dto.DispatchResponse, error) {
	draft, err := s.toDraft(ctx, req)
	if err != nil {
		return nil, err
	}
	if draft.IsBlank() {
		return nil, ErrBlankDispatch
	}

	results, err := s.repo.Dispatch.UpsertBatch(ctx, []model.DispatchDraft{*draft})
	if err != nil {
		s.logger.Error("派遣记录 Upsert 失败", zap.Error(err))
		return nil, err
	}
	if len(results) != 1 {
		return nil, errors.New("Upsert 未返回结果")
	}
	return toDispatchResponse(&results[0].Dispatch, results[0].Updated), nil
}

// ────────────────────── UpsertBatch ──────────────────────

func (s *dispatchService) UpsertBatch(ctx context.Context, reqs []dto.UpsertDispatchRequest) ([]dto.DispatchResponse, error) {
	drafts := make([]model.DispatchDraft, 0, len(reqs))
	for i := range reqs {
		draft, err := s.toDraft(ctx, &reqs[i])
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *draft)
	}

	results, err := s.repo.Dispatch.UpsertBatch(ctx, drafts)
	if err != nil {
		s.logger.Error("派遣记录批量 Upsert 失败", zap.Int("entries", len(drafts)), zap.Error(err))
		return nil, err
	}

	responses := make([]dto.DispatchResponse, 0, len(results))
	for i := range results {
		responses = append(responses, *toDispatchResponse(&results[i].Dispatch, results[i].Updated))
	}
	return responses, nil
}

// toDraft 请求 → 草稿：解析民用日（缺省为目标时区今天）并校验记者存在
func (s *dispatchService) toDraft(ctx context.Context, req *dto.UpsertDispatchRequest) (*model.DispatchDraft, error) {
	var day civildate.Day
	if req.CivilDay == "" {
		day = s.normalizer.Today()
	} else {
		parsed, err := s.normalizer.ParseDay(req.CivilDay)
		if err != nil {
			return nil, err
		}
		day = parsed
	}

	if _, err := s.repo.Reporter.GetByID(ctx, req.ReporterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReporterNotFound
		}
		s.logger.Error("查询记者失败", zap.Int64("reporter_id", req.ReporterID), zap.Error(err))
		return nil, err
	}

	return &model.DispatchDraft{
		ReporterID:    req.ReporterID,
		SlotNumber:    req.SlotNumber,
		CivilDay:      day,
		Title:         req.Title,
		ScheduledTime: req.ScheduledTime,
		LiveTime:      req.LiveTime,
		Status:        req.Status,
	}, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *dispatchService) GetByID(ctx context.Context, id int64) (*dto.DispatchResponse, error) {
	dispatch, err := s.repo.Dispatch.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDispatchNotFound
		}
		s.logger.Error("查询派遣记录失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return toDispatchResponse(dispatch, false), nil
}

// ────────────────────── Update ──────────────────────

func (s *dispatchService) Update(ctx context.Context, id int64, req *dto.UpdateDispatchRequest) (*dto.DispatchResponse, error) {
	dispatch, err := s.repo.Dispatch.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDispatchNotFound
		}
		s.logger.Error("查询派遣记录失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	if req.Title != nil {
		dispatch.Title = *req.Title
	}
	if req.ScheduledTime != nil {
		dispatch.ScheduledTime = *req.ScheduledTime
	}
	if req.LiveTime != nil {
		dispatch.LiveTime = *req.LiveTime
	}
	if req.Status != nil {
		dispatch.Status = *req.Status
	}
	if req.CivilDay != nil {
		day, err := s.normalizer.ParseDay(*req.CivilDay)
		if err != nil {
			return nil, err
		}
		dispatch.CivilDay = day
	}

	if err := s.repo.Dispatch.Update(ctx, dispatch); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 改日期/档位撞上已有记录，交由调用方改走 Upsert
			return nil, err
		}
		s.logger.Error("更新派遣记录失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	return toDispatchResponse(dispatch, false), nil
}

// ────────────────────── Delete ──────────────────────

func (s *dispatchService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Dispatch.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDispatchNotFound
		}
		s.logger.Error("查询派遣记录失败", zap.Int64("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Dispatch.Delete(ctx, id); err != nil {
		s.logger.Error("删除派遣记录失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func toDispatchResponse(d *model.Dispatch, updated bool) *dto.DispatchResponse {
	resp := &dto.DispatchResponse{
		ID:              d.ID,
		ReporterID:      d.ReporterID,
		SlotNumber:      d.SlotNumber,
		Title:           d.Title,
		ScheduledTime:   d.ScheduledTime,
		LiveTime:        d.LiveTime,
		CivilDay:        d.CivilDay.String(),
		CivilDayDisplay: civildate.FormatForDisplay(d.CivilDay, civildate.DisplayOptions{IncludeWeekday: true}),
		Status:          d.Status,
		Updated:         updated,
		CreatedAt:       d.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:       d.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if d.Reporter != nil {
		resp.Reporter = toReporterResponse(d.Reporter)
	}
	return resp
}
