package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minato696/controltransmisionesV4/internal/model"
	"github.com/minato696/controltransmisionesV4/pkg/civildate"
)

// DispatchFilter 范围查询过滤条件。From/To 为闭区间；单日查询时两者相等。
// 指针为 nil 表示不按该维度过滤。
type DispatchFilter struct {
	ReporterID *int64
	CityID     *int64
	From       *civildate.Day
	To         *civildate.Day
}

// UpsertResult 批量 Upsert 的单条结果。Updated=true 表示命中已有记录并合并。
type UpsertResult struct {
	Dispatch model.Dispatch
	Updated  bool
}

// DispatchRepository 派遣记录数据访问接口
type DispatchRepository interface {
	Query(ctx context.Context, filter DispatchFilter) ([]model.Dispatch, error)
	GetByID(ctx context.Context, id int64) (*model.Dispatch, error)
	// UpsertBatch 以 (reporter_id, slot_number, civil_day) 为键批量建或改。
	// 整批在一个事务内执行，任一条失败则全批回滚。
	UpsertBatch(ctx context.Context, drafts []model.DispatchDraft) ([]UpsertResult, error)
	Update(ctx context.Context, dispatch *model.Dispatch) error
	Delete(ctx context.Context, id int64) error
	ListByReporter(ctx context.Context, reporterID int64) ([]model.Dispatch, error)
	LastByReporter(ctx context.Context, reporterID int64) (*model.Dispatch, error)
	CountByReporterBetween(ctx context.Context, reporterID int64, from, to civildate.Day) (int64, error)
}

type dispatchRepo struct {
	db *gorm.DB
}

// NewDispatchRepo 创建 DispatchRepository 实现
func NewDispatchRepo(db *gorm.DB) DispatchRepository {
	return &dispatchRepo{db: db}
}

// Query 范围读取。排序固定为 civil_day DESC（最近的天在前）、
// scheduled_time ASC（同一天内按播出时刻先后）——消费方的排名语义依赖该顺序。
func (r *dispatchRepo) Query(ctx context.Context, filter DispatchFilter) ([]model.Dispatch, error) {
	q := r.db.WithContext(ctx).Model(&model.Dispatch{}).
		Preload("Reporter").Preload("Reporter.City")

	if filter.From != nil && filter.To != nil {
		q = q.Where("civil_day BETWEEN ? AND ?", *filter.From, *filter.To)
	}
	if filter.ReporterID != nil {
		q = q.Where("dispatches.reporter_id = ?", *filter.ReporterID)
	}
	if filter.CityID != nil {
		q = q.Joins("JOIN reporters ON reporters.id = dispatches.reporter_id").
			Where("reporters.city_id = ?", *filter.CityID)
	}

	var dispatches []model.Dispatch
	err := q.Order("civil_day DESC, scheduled_time ASC").Find(&dispatches).Error
	return dispatches, err
}

func (r *dispatchRepo) GetByID(ctx context.Context, id int64) (*model.Dispatch, error) {
	var dispatch model.Dispatch
	err := r.db.WithContext(ctx).
		Preload("Reporter").Preload("Reporter.City").
		Where("id = ?", id).
		First(&dispatch).Error
	if err != nil {
		return nil, err
	}
	return &dispatch, nil
}

// UpsertBatch 幂等批量建或改。
//
// 每条草稿在同一事务内完成「按键查找 → 存在则部分合并 / 不存在则插入」；
// 插入撞到唯一索引 uniq_dispatch_key（并发批次先插入了同键记录）时，
// 借助保存点回退后退化为更新重试，绝不向上抛裸冲突。
// 空草稿（标题/播出/直播全空）按约定跳过。
func (r *dispatchRepo) UpsertBatch(ctx context.Context, drafts []model.DispatchDraft) ([]UpsertResult, error) {
	results := make([]UpsertResult, 0, len(drafts))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, draft := range drafts {
			if draft.IsBlank() {
				continue
			}
			res, err := upsertOne(tx, draft)
			if err != nil {
				return fmt.Errorf("记者 %d 档位 %d 日期 %s: %w",
					draft.ReporterID, draft.SlotNumber, draft.CivilDay, err)
			}
			results = append(results, *res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 事务提交后补齐关联，供响应序列化使用
	for i := range results {
		full, err := r.GetByID(ctx, results[i].Dispatch.ID)
		if err != nil {
			return nil, err
		}
		results[i].Dispatch = *full
	}
	return results, nil
}

func upsertOne(tx *gorm.DB, draft model.DispatchDraft) (*UpsertResult, error) {
	var existing model.Dispatch
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reporter_id = ? AND slot_number = ? AND civil_day = ?",
			draft.ReporterID, draft.SlotNumber, draft.CivilDay).
		First(&existing).Error

	switch {
	case err == nil:
		if err := mergeDraft(tx, &existing, draft); err != nil {
			return nil, err
		}
		return &UpsertResult{Dispatch: existing, Updated: true}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		record := model.Dispatch{
			ReporterID:    draft.ReporterID,
			SlotNumber:    draft.SlotNumber,
			CivilDay:      draft.CivilDay,
			Title:         deref(draft.Title),
			ScheduledTime: deref(draft.ScheduledTime),
			LiveTime:      deref(draft.LiveTime),
			Status:        derefOr(draft.Status, model.DispatchStatusScheduled),
		}
		// 子事务 = 保存点：插入失败不拖垮外层事务，方便冲突后重试
		createErr := tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(&record).Error
		})
		if createErr == nil {
			return &UpsertResult{Dispatch: record, Updated: false}, nil
		}
		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return nil, createErr
		}
		// 并发写已占据该键 → 锁定后改走合并
		var again model.Dispatch
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reporter_id = ? AND slot_number = ? AND civil_day = ?",
				draft.ReporterID, draft.SlotNumber, draft.CivilDay).
			First(&again).Error; err != nil {
			return nil, err
		}
		if err := mergeDraft(tx, &again, draft); err != nil {
			return nil, err
		}
		return &UpsertResult{Dispatch: again, Updated: true}, nil

	default:
		return nil, err
	}
}

// mergeDraft 部分合并：只有草稿中显式提供的字段才覆盖已有值
func mergeDraft(tx *gorm.DB, existing *model.Dispatch, draft model.DispatchDraft) error {
	updates := map[string]interface{}{}
	if draft.Title != nil {
		updates["title"] = *draft.Title
		existing.Title = *draft.Title
	}
	if draft.ScheduledTime != nil {
		updates["scheduled_time"] = *draft.ScheduledTime
		existing.ScheduledTime = *draft.ScheduledTime
	}
	if draft.LiveTime != nil {
		updates["live_time"] = *draft.LiveTime
		existing.LiveTime = *draft.LiveTime
	}
	if draft.Status != nil {
		updates["status"] = *draft.Status
		existing.Status = *draft.Status
	}
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(existing).Updates(updates).Error
}

func (r *dispatchRepo) Update(ctx context.Context, dispatch *model.Dispatch) error {
	return r.db.WithContext(ctx).Save(dispatch).Error
}

func (r *dispatchRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Dispatch{}).Error
}

func (r *dispatchRepo) ListByReporter(ctx context.Context, reporterID int64) ([]model.Dispatch, error) {
	var dispatches []model.Dispatch
	err := r.db.WithContext(ctx).
		Where("reporter_id = ?", reporterID).
		Order("civil_day DESC, scheduled_time ASC").
		Find(&dispatches).Error
	return dispatches, err
}

func (r *dispatchRepo) LastByReporter(ctx context.Context, reporterID int64) (*model.Dispatch, error) {
	var dispatch model.Dispatch
	err := r.db.WithContext(ctx).
		Where("reporter_id = ?", reporterID).
		Order("civil_day DESC, scheduled_time DESC").
		First(&dispatch).Error
	if err != nil {
		return nil, err
	}
	return &dispatch, nil
}

func (r *dispatchRepo) CountByReporterBetween(ctx context.Context, reporterID int64, from, to civildate.Day) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Dispatch{}).
		Where("reporter_id = ? AND civil_day BETWEEN ? AND ?", reporterID, from, to).
		Count(&count).Error
	return count, err
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefOr(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}
