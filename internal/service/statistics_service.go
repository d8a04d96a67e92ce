package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/minato696/controltransmisionesV4/internal/dto"
	"github.com/minato696/controltransmisionesV4/internal/model"
	"github.com/minato696/controltransmisionesV4/internal/repository"
	"github.com/minato696/controltransmisionesV4/pkg/civildate"
)

// 统计口径常量
const (
	rankTop        = 5
	histogramDays  = 7
	bucketMorning  = "Mañana (6-12h)"
	bucketAfterno  = "Tarde (12-18h)"
	bucketNight    = "Noche (18-24h)"
	periodDaily    = "daily"
	periodWeekly   = "weekly"
	periodMonthly  = "monthly"
)

// StatisticsService 区间统计业务接口
type StatisticsService interface {
	Report(ctx context.Context, req *dto.StatisticsRequest) (*dto.StatisticsResponse, error)
}

type statisticsService struct {
	repo       *repository.Repository
	normalizer *civildate.Normalizer
	logger     *zap.Logger
}

// NewStatisticsService 创建 StatisticsService 实例
func NewStatisticsService(repo *repository.Repository, normalizer *civildate.Normalizer, logger *zap.Logger) StatisticsService {
	return &statisticsService{repo: repo, normalizer: normalizer, logger: logger}
}

// Report 先由归一化器把请求区间落成民用日闭区间，再做范围查询，
// 最后对结果集做一次纯折叠。聚合本身无状态、无 I/O，可对任意区间
// 重复调用而无副作用。
func (s *statisticsService) Report(ctx context.Context, req *dto.StatisticsRequest) (*dto.StatisticsResponse, error) {
	from, to, periodType, err := s.resolveRange(req)
	if err != nil {
		return nil, err
	}

	dispatches, err := s.repo.Dispatch.Query(ctx, repository.DispatchFilter{From: &from, To: &to})
	if err != nil {
		s.logger.Error("统计查询派遣记录失败", zap.Error(err))
		return nil, err
	}

	totalReporters, err := s.repo.Reporter.Count(ctx)
	if err != nil {
		s.logger.Error("统计查询记者总数失败", zap.Error(err))
		return nil, err
	}

	activeCities, err := s.repo.City.CountActive(ctx)
	if err != nil {
		s.logger.Error("统计查询活跃城市数失败", zap.Error(err))
		return nil, err
	}

	return buildReport(dispatches, totalReporters, activeCities, from, to, periodType), nil
}

// resolveRange 请求 → 民用日闭区间。
// daily 缺省为今天；weekly 缺省为本周一至今天；monthly 缺省为本月一日至今天。
// 统计请求中的日期是载荷本身，解析失败按硬错误处理（区别于列表过滤的降级）。
func (s *statisticsService) resolveRange(req *dto.StatisticsRequest) (from, to civildate.Day, periodType string, err error) {
	periodType = req.Period
	if periodType == "" {
		periodType = periodWeekly
	}
	today := s.normalizer.Today()

	switch periodType {
	case periodDaily:
		if req.Date != "" {
			day, perr := s.normalizer.ParseDay(req.Date)
			if perr != nil {
				return from, to, periodType, perr
			}
			return day, day, periodType, nil
		}
		return today, today, periodType, nil

	case periodMonthly:
		first, _ := s.normalizer.MonthBounds(today)
		return first, today, periodType, nil

	default: // weekly
		if req.From != "" && req.To != "" {
			f, perr := s.normalizer.ParseDay(req.From)
			if perr != nil {
				return from, to, periodType, perr
			}
			t, perr := s.normalizer.ParseDay(req.To)
			if perr != nil {
				return from, to, periodType, perr
			}
			return f, t, periodType, nil
		}
		monday, _ := s.normalizer.WeekBounds(today)
		return monday, today, periodType, nil
	}
}

// ════════════════════════════════════════════════════════════
// buildReport — 对已过滤记录集的确定性折叠
// ════════════════════════════════════════════════════════════
//
// 输入顺序即账本查询顺序（civil_day DESC, scheduled_time ASC）。
// 排名并列时保持首次出现的先后（稳定排序），与既有消费方口径一致。

func buildReport(dispatches []model.Dispatch, totalReporters, activeCities int64,
	from, to civildate.Day, periodType string) *dto.StatisticsResponse {

	total := len(dispatches)
	elapsedDays := civildate.DayCount(from, to)
	if elapsedDays < 1 {
		elapsedDays = 1
	}

	// ── 单遍折叠的累计器 ──

	type cityAgg struct {
		id    int64
		name  string
		count int
	}
	type reporterAgg struct {
		id      int64
		name    string
		city    string
		total   int
		titled  int
		live    int
		problem int
	}

	var (
		liveCount    int
		problemCount int
		titledCount  int

		reporterSeen  = map[int64]*reporterAgg{}
		reporterOrder []int64
		citySeen      = map[int64]*cityAgg{}
		cityOrder     []int64

		hourSeen  = map[string]int{}
		hourOrder []string

		morning, afternoon, night int
	)

	histStart := to.AddDays(-(histogramDays - 1))
	histogram := make([]dto.HistogramEntry, histogramDays)
	histIndex := map[string]int{}
	for i := 0; i < histogramDays; i++ {
		day := histStart.AddDays(i)
		histogram[i] = dto.HistogramEntry{Day: day.String(), Count: 0}
		histIndex[day.String()] = i
	}

	for i := range dispatches {
		d := &dispatches[i]

		isLive := strings.TrimSpace(d.LiveTime) != ""
		isTitled := strings.TrimSpace(d.Title) != ""
		isProblem := d.Status == model.DispatchStatusProblem

		if isLive {
			liveCount++
		}
		if isTitled {
			titledCount++
		}
		if isProblem {
			problemCount++
		}

		// 记者维度
		agg, ok := reporterSeen[d.ReporterID]
		if !ok {
			agg = &reporterAgg{id: d.ReporterID}
			if d.Reporter != nil {
				agg.name = d.Reporter.Name
				if d.Reporter.City != nil {
					agg.city = d.Reporter.City.Name
				}
			}
			reporterSeen[d.ReporterID] = agg
			reporterOrder = append(reporterOrder, d.ReporterID)
		}
		agg.total++
		if isTitled {
			agg.titled++
		}
		if isLive {
			agg.live++
		}
		if isProblem {
			agg.problem++
		}

		// 城市维度（记者关联缺失视为上游契约破坏，跳过城市归因但保留总量）
		if d.Reporter != nil {
			ca, ok := citySeen[d.Reporter.CityID]
			if !ok {
				name := ""
				if d.Reporter.City != nil {
					name = d.Reporter.City.Name
				}
				ca = &cityAgg{id: d.Reporter.CityID, name: name}
				citySeen[d.Reporter.CityID] = ca
				cityOrder = append(cityOrder, d.Reporter.CityID)
			}
			ca.count++
		}

		// 直方图：仅统计落在 [to-6, to] 窗口内的天
		if idx, ok := histIndex[d.CivilDay.String()]; ok {
			histogram[idx].Count++
		}

		// 时段维度：无法解析出小时的记录不参与时段分布
		if hour, ok := civildate.HourOf(d.ScheduledTime); ok {
			label := fmt.Sprintf("%02d:00", hour)
			if _, seen := hourSeen[label]; !seen {
				hourOrder = append(hourOrder, label)
			}
			hourSeen[label]++

			switch {
			case hour >= 6 && hour < 12:
				morning++
			case hour >= 12 && hour < 18:
				afternoon++
			case hour >= 18:
				night++
			}
		}
	}

	// ── 排名（稳定排序，计数并列保持首次出现顺序） ──

	topCities := make([]dto.CityRank, 0, len(cityOrder))
	for _, id := range cityOrder {
		ca := citySeen[id]
		topCities = append(topCities, dto.CityRank{ID: ca.id, Name: ca.name, Count: ca.count})
	}
	sort.SliceStable(topCities, func(i, j int) bool { return topCities[i].Count > topCities[j].Count })
	if len(topCities) > rankTop {
		topCities = topCities[:rankTop]
	}
	for i := range topCities {
		topCities[i].Pct = pctInt(topCities[i].Count, total)
	}

	topReporters := make([]dto.ReporterRank, 0, len(reporterOrder))
	for _, id := range reporterOrder {
		ra := reporterSeen[id]
		topReporters = append(topReporters, dto.ReporterRank{ID: ra.id, Name: ra.name, City: ra.city, Count: ra.total})
	}
	sort.SliceStable(topReporters, func(i, j int) bool { return topReporters[i].Count > topReporters[j].Count })
	if len(topReporters) > rankTop {
		topReporters = topReporters[:rankTop]
	}
	for i := range topReporters {
		topReporters[i].Pct = pctInt(topReporters[i].Count, total)
	}

	peakHours := make([]dto.HourCount, 0, len(hourOrder))
	for _, label := range hourOrder {
		peakHours = append(peakHours, dto.HourCount{Hour: label, Count: hourSeen[label]})
	}
	sort.SliceStable(peakHours, func(i, j int) bool { return peakHours[i].Count > peakHours[j].Count })
	if len(peakHours) > rankTop {
		peakHours = peakHours[:rankTop]
	}

	// ── 时段分布：分母为可解析出小时的记录数 ──

	withHour := morning + afternoon + night
	timeOfDay := []dto.TimeOfDayBucket{
		{Range: bucketMorning, Count: morning, Pct: pctInt(morning, withHour)},
		{Range: bucketAfterno, Count: afternoon, Pct: pctInt(afternoon, withHour)},
		{Range: bucketNight, Count: night, Pct: pctInt(night, withHour)},
	}

	// ── 记者明细：总量降序，并列保持首次出现顺序 ──

	reporterDetail := make([]dto.ReporterStats, 0, len(reporterOrder))
	for _, id := range reporterOrder {
		ra := reporterSeen[id]
		reporterDetail = append(reporterDetail, dto.ReporterStats{
			ID:         ra.id,
			Name:       ra.name,
			City:       ra.city,
			Total:      ra.total,
			Titled:     ra.titled,
			Live:       ra.live,
			Problem:    ra.problem,
			TitledPct:  round1(pct(ra.titled, ra.total)),
			LivePct:    round1(pct(ra.live, ra.total)),
			ProblemPct: round1(pct(ra.problem, ra.total)),
		})
	}
	sort.SliceStable(reporterDetail, func(i, j int) bool { return reporterDetail[i].Total > reporterDetail[j].Total })

	activeReporters := len(reporterOrder)
	inactive := int(totalReporters) - activeReporters
	if inactive < 0 {
		inactive = 0
	}

	coverage := 0.0
	if activeCities > 0 {
		coverage = 100 * float64(len(cityOrder)) / float64(activeCities)
	}

	return &dto.StatisticsResponse{
		Total:               total,
		DailyAverage:        round2(float64(total) / float64(elapsedDays)),
		ActiveReporters:     activeReporters,
		InactiveReporters:   inactive,
		NationalCoveragePct: round2(coverage),
		LiveCount:           liveCount,
		LivePct:             round2(pct(liveCount, total)),
		ProblemCount:        problemCount,
		ProblemPct:          round2(pct(problemCount, total)),
		TitledCount:         titledCount,
		TitledPct:           round1(pct(titledCount, total)),
		TopCities:           topCities,
		TopReporters:        topReporters,
		DailyHistogram:      histogram,
		PeakHours:           peakHours,
		TimeOfDay:           timeOfDay,
		ReporterDetail:      reporterDetail,
		Period: dto.PeriodInfo{
			Type: periodType,
			From: from.String(),
			To:   to.String(),
		},
	}
}

// ── 数值口径辅助 ──

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

func pctInt(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }

func round2(x float64) float64 { return math.Round(x*100) / 100 }
