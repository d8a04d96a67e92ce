package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/minato696/controltransmisionesV4/internal/model"
	"github.com/minato696/controltransmisionesV4/internal/repository"
	"github.com/minato696/controltransmisionesV4/pkg/civildate"
)

// ── Mock DispatchRepository ──

type mockDispatchRepo struct {
	dispatches map[int64]*model.Dispatch
	reporters  *mockReporterRepo // 关联补齐用
	idCounter  int64
}

func newMockDispatchRepo(reporters *mockReporterRepo) *mockDispatchRepo {
	return &mockDispatchRepo{
		dispatches: make(map[int64]*model.Dispatch),
		reporters:  reporters,
	}
}

func (m *mockDispatchRepo) attach(d *model.Dispatch) model.Dispatch {
	cp := *d
	if m.reporters != nil {
		if r, ok := m.reporters.reporters[d.ReporterID]; ok {
			rc := *r
			cp.Reporter = &rc
		}
	}
	return cp
}

func (m *mockDispatchRepo) findByKey(reporterID int64, slot int, day civildate.Day) *model.Dispatch {
	for _, d := range m.dispatches {
		if d.ReporterID == reporterID && d.SlotNumber == slot && d.CivilDay.Equal(day) {
			return d
		}
	}
	return nil
}

func (m *mockDispatchRepo) Query(_ context.Context, filter repository.DispatchFilter) ([]model.Dispatch, error) {
	var result []model.Dispatch
	for _, d := range m.dispatches {
		if filter.From != nil && filter.To != nil {
			if d.CivilDay.Before(*filter.From) || d.CivilDay.After(*filter.To) {
				continue
			}
		}
		if filter.ReporterID != nil && d.ReporterID != *filter.ReporterID {
			continue
		}
		full := m.attach(d)
		if filter.CityID != nil {
			if full.Reporter == nil || full.Reporter.CityID != *filter.CityID {
				continue
			}
		}
		result = append(result, full)
	}
	// 与真实实现一致：civil_day DESC, scheduled_time ASC
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CivilDay.Equal(result[j].CivilDay) {
			return result[i].CivilDay.After(result[j].CivilDay)
		}
		return result[i].ScheduledTime < result[j].ScheduledTime
	})
	return result, nil
}

func (m *mockDispatchRepo) GetByID(_ context.Context, id int64) (*model.Dispatch, error) {
	if d, ok := m.dispatches[id]; ok {
		full := m.attach(d)
		return &full, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDispatchRepo) UpsertBatch(_ context.Context, drafts []model.DispatchDraft) ([]repository.UpsertResult, error) {
	var results []repository.UpsertResult
	for _, draft := range drafts {
		if draft.IsBlank() {
			continue
		}
		if existing := m.findByKey(draft.ReporterID, draft.SlotNumber, draft.CivilDay); existing != nil {
			if draft.Title != nil {
				existing.Title = *draft.Title
			}
			if draft.ScheduledTime != nil {
				existing.ScheduledTime = *draft.ScheduledTime
			}
			if draft.LiveTime != nil {
				existing.LiveTime = *draft.LiveTime
			}
			if draft.Status != nil {
				existing.Status = *draft.Status
			}
			existing.UpdatedAt = time.Now()
			results = append(results, repository.UpsertResult{Dispatch: m.attach(existing), Updated: true})
			continue
		}

		m.idCounter++
		record := &model.Dispatch{
			ID:         m.idCounter,
			ReporterID: draft.ReporterID,
			SlotNumber: draft.SlotNumber,
			CivilDay:   draft.CivilDay,
			Status:     model.DispatchStatusScheduled,
		}
		if draft.Title != nil {
			record.Title = *draft.Title
		}
		if draft.ScheduledTime != nil {
			record.ScheduledTime = *draft.ScheduledTime
		}
		if draft.LiveTime != nil {
			record.LiveTime = *draft.LiveTime
		}
		if draft.Status != nil && *draft.Status != "" {
			record.Status = *draft.Status
		}
		record.CreatedAt = time.Now()
		record.UpdatedAt = record.CreatedAt
		m.dispatches[record.ID] = record
		results = append(results, repository.UpsertResult{Dispatch: m.attach(record), Updated: false})
	}
	return results, nil
}

func (m *mockDispatchRepo) Update(_ context.Context, dispatch *model.Dispatch) error {
	if _, ok := m.dispatches[dispatch.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *dispatch
	cp.Reporter = nil
	cp.UpdatedAt = time.Now()
	m.dispatches[dispatch.ID] = &cp
	return nil
}

func (m *mockDispatchRepo) Delete(_ context.Context, id int64) error {
	delete(m.dispatches, id)
	return nil
}

func (m *mockDispatchRepo) ListByReporter(_ context.Context, reporterID int64) ([]model.Dispatch, error) {
	rid := reporterID
	return m.Query(context.Background(), repository.DispatchFilter{ReporterID: &rid})
}

func (m *mockDispatchRepo) LastByReporter(_ context.Context, reporterID int64) (*model.Dispatch, error) {
	var last *model.Dispatch
	for _, d := range m.dispatches {
		if d.ReporterID != reporterID {
			continue
		}
		if last == nil ||
			d.CivilDay.After(last.CivilDay) ||
			(d.CivilDay.Equal(last.CivilDay) && strings.Compare(d.ScheduledTime, last.ScheduledTime) > 0) {
			last = d
		}
	}
	if last == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *last
	return &cp, nil
}

func (m *mockDispatchRepo) CountByReporterBetween(_ context.Context, reporterID int64, from, to civildate.Day) (int64, error) {
	var count int64
	for _, d := range m.dispatches {
		if d.ReporterID == reporterID && !d.CivilDay.Before(from) && !d.CivilDay.After(to) {
			count++
		}
	}
	return count, nil
}

// ── Mock ReporterRepository ──

type mockReporterRepo struct {
	reporters map[int64]*model.Reporter
	cities    *mockCityRepo
	idCounter int64
}

func newMockReporterRepo(cities *mockCityRepo) *mockReporterRepo {
	return &mockReporterRepo{
		reporters: make(map[int64]*model.Reporter),
		cities:    cities,
	}
}

func (m *mockReporterRepo) attach(r *model.Reporter) model.Reporter {
	cp := *r
	if m.cities != nil {
		if c, ok := m.cities.cities[r.CityID]; ok {
			cc := *c
			cp.City = &cc
		}
	}
	return cp
}

func (m *mockReporterRepo) Create(_ context.Context, reporter *model.Reporter) error {
	if reporter.ID == 0 {
		m.idCounter++
		reporter.ID = m.idCounter
	} else if reporter.ID > m.idCounter {
		m.idCounter = reporter.ID
	}
	cp := *reporter
	cp.City = nil
	m.reporters[cp.ID] = &cp
	return nil
}

func (m *mockReporterRepo) GetByID(_ context.Context, id int64) (*model.Reporter, error) {
	if r, ok := m.reporters[id]; ok {
		full := m.attach(r)
		return &full, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReporterRepo) List(_ context.Context) ([]model.Reporter, error) {
	var result []model.Reporter
	for _, r := range m.reporters {
		result = append(result, m.attach(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockReporterRepo) ListByCity(_ context.Context, cityID int64) ([]model.Reporter, error) {
	var result []model.Reporter
	for _, r := range m.reporters {
		if r.CityID == cityID {
			result = append(result, m.attach(r))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockReporterRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.reporters)), nil
}

func (m *mockReporterRepo) CountByCity(_ context.Context, cityID int64) (int64, error) {
	var count int64
	for _, r := range m.reporters {
		if r.CityID == cityID {
			count++
		}
	}
	return count, nil
}

func (m *mockReporterRepo) Update(_ context.Context, reporter *model.Reporter) error {
	if _, ok := m.reporters[reporter.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *reporter
	cp.City = nil
	m.reporters[cp.ID] = &cp
	return nil
}

func (m *mockReporterRepo) DeleteWithDispatches(_ context.Context, id int64) error {
	delete(m.reporters, id)
	return nil
}

// ── Mock CityRepository ──

type mockCityRepo struct {
	cities    map[int64]*model.City
	reporters *mockReporterRepo
	idCounter int64
}

func newMockCityRepo() *mockCityRepo {
	return &mockCityRepo{cities: make(map[int64]*model.City)}
}

func (m *mockCityRepo) Create(_ context.Context, city *model.City) error {
	for _, c := range m.cities {
		if c.Code == city.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	if city.ID == 0 {
		m.idCounter++
		city.ID = m.idCounter
	} else if city.ID > m.idCounter {
		m.idCounter = city.ID
	}
	cp := *city
	cp.Reporters = nil
	m.cities[cp.ID] = &cp
	return nil
}

func (m *mockCityRepo) GetByID(_ context.Context, id int64) (*model.City, error) {
	if c, ok := m.cities[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCityRepo) GetByCode(_ context.Context, code string) (*model.City, error) {
	for _, c := range m.cities {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCityRepo) List(_ context.Context, includeReporters bool) ([]model.City, error) {
	var result []model.City
	for _, c := range m.cities {
		cp := *c
		if includeReporters && m.reporters != nil {
			for _, r := range m.reporters.reporters {
				if r.CityID == c.ID {
					cp.Reporters = append(cp.Reporters, *r)
				}
			}
			sort.Slice(cp.Reporters, func(i, j int) bool { return cp.Reporters[i].Name < cp.Reporters[j].Name })
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCityRepo) CountActive(_ context.Context) (int64, error) {
	var count int64
	for _, c := range m.cities {
		if c.Active {
			count++
		}
	}
	return count, nil
}

func (m *mockCityRepo) CountReportersByCity(_ context.Context) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	if m.reporters != nil {
		for _, r := range m.reporters.reporters {
			counts[r.CityID]++
		}
	}
	return counts, nil
}

func (m *mockCityRepo) Update(_ context.Context, city *model.City) error {
	if _, ok := m.cities[city.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *city
	cp.Reporters = nil
	m.cities[cp.ID] = &cp
	return nil
}

func (m *mockCityRepo) Delete(_ context.Context, id int64) error {
	delete(m.cities, id)
	return nil
}

// ── 测试夹具 ──

// newTestRepos 组装互相关联的三个 mock 仓库并返回聚合
func newTestRepos() (*repository.Repository, *mockDispatchRepo, *mockReporterRepo, *mockCityRepo) {
	cities := newMockCityRepo()
	reporters := newMockReporterRepo(cities)
	cities.reporters = reporters
	dispatches := newMockDispatchRepo(reporters)

	repo := &repository.Repository{
		Dispatch: dispatches,
		Reporter: reporters,
		City:     cities,
	}
	return repo, dispatches, reporters, cities
}
