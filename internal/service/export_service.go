package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/minato696/controltransmisionesV4/internal/dto"
	"github.com/minato696/controltransmisionesV4/internal/model"
	"github.com/minato696/controltransmisionesV4/internal/repository"
	"github.com/minato696/controltransmisionesV4/pkg/civildate"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoDispatches = errors.New("该区间内无派遣记录")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// 无播出时刻的日程项按 15 分钟占位
const icsDefaultDuration = 15 * time.Minute

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel 按民用日分 Sheet，日内按播出时刻排列（沿用账本查询顺序）
//   - ICS 每条派遣生成一个 VEVENT，起点为目标时区当日零点加播出时刻
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportXLSX 导出区间派遣记录为 Excel
	ExportXLSX(ctx context.Context, req *dto.ExportDispatchesRequest) (*bytes.Buffer, string, error)
	// ExportICS 导出区间派遣记录为 iCalendar 日程
	ExportICS(ctx context.Context, req *dto.ExportDispatchesRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo       *repository.Repository
	normalizer *civildate.Normalizer
	logger     *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, normalizer *civildate.Normalizer, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, normalizer: normalizer, logger: logger}
}

// resolveExportRange 区间缺省为本周一至今天；导出请求中的日期是载荷本身，
// 解析失败按硬错误处理
func (s *exportService) resolveExportRange(req *dto.ExportDispatchesRequest) (from, to civildate.Day, err error) {
	if req.From != "" && req.To != "" {
		f, perr := s.normalizer.ParseDay(req.From)
		if perr != nil {
			return from, to, perr
		}
		t, perr := s.normalizer.ParseDay(req.To)
		if perr != nil {
			return from, to, perr
		}
		return f, t, nil
	}
	today := s.normalizer.Today()
	monday, _ := s.normalizer.WeekBounds(today)
	return monday, today, nil
}

func (s *exportService) queryRange(ctx context.Context, req *dto.ExportDispatchesRequest) ([]model.Dispatch, civildate.Day, civildate.Day, error) {
	from, to, err := s.resolveExportRange(req)
	if err != nil {
		return nil, from, to, err
	}

	filter := repository.DispatchFilter{From: &from, To: &to}
	if req.ReporterID > 0 {
		filter.ReporterID = &req.ReporterID
	}

	dispatches, err := s.repo.Dispatch.Query(ctx, filter)
	if err != nil {
		s.logger.Error("导出查询派遣记录失败", zap.Error(err))
		return nil, from, to, err
	}
	if len(dispatches) == 0 {
		return nil, from, to, ErrExportNoDispatches
	}
	return dispatches, from, to, nil
}

// ═══════════════════════════════════════════════════════════
// ExportXLSX — 导出区间派遣记录为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet 按民用日命名（"2025-03-10"），最近的天在前
//   - 列：Ciudad | Reportero | Bloque | Título | Programado | En vivo | Estado
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportXLSX(ctx context.Context, req *dto.ExportDispatchesRequest) (*bytes.Buffer, string, error) {
	dispatches, from, to, err := s.queryRange(ctx, req)
	if err != nil {
		return nil, "", err
	}

	// 按民用日分组；Query 的排序保证天序从近到远、日内按播出时刻
	var dayOrder []string
	byDay := map[string][]*model.Dispatch{}
	for i := range dispatches {
		key := dispatches[i].CivilDay.String()
		if _, ok := byDay[key]; !ok {
			dayOrder = append(dayOrder, key)
		}
		byDay[key] = append(byDay[key], &dispatches[i])
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"Ciudad", "Reportero", "Bloque", "Título", "Programado", "En vivo", "Estado"}
	widths := []float64{16, 24, 8, 40, 12, 12, 12}

	for sheetIdx, dayKey := range dayOrder {
		idx, err := f.NewSheet(dayKey)
		if err != nil {
			s.logger.Error("创建 Sheet 失败", zap.String("sheet", dayKey), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		if sheetIdx == 0 {
			f.SetActiveSheet(idx)
		}

		for i, h := range headers {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetColWidth(dayKey, col, col, widths[i])
			cellRef := fmt.Sprintf("%s1", col)
			f.SetCellValue(dayKey, cellRef, h)
			f.SetCellStyle(dayKey, cellRef, cellRef, headerStyle)
		}

		row := 2
		for _, d := range byDay[dayKey] {
			cityName, reporterName := "", ""
			if d.Reporter != nil {
				reporterName = d.Reporter.Name
				if d.Reporter.City != nil {
					cityName = d.Reporter.City.Name
				}
			}
			values := []interface{}{
				cityName, reporterName, d.SlotNumber,
				d.Title, d.ScheduledTime, d.LiveTime, d.Status,
			}
			for i, v := range values {
				col, _ := excelize.ColumnNumberToName(i + 1)
				f.SetCellValue(dayKey, fmt.Sprintf("%s%d", col, row), v)
			}
			row++
		}
	}

	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("despachos_%s_%s.xlsx", from, to)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS — 导出区间派遣记录为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每条派遣一个 VEVENT：
//   - DTSTART = 目标时区当日零点 + 播出时刻（缺播出时刻按零点整）
//   - 时长固定 15 分钟（派遣是瞬时事件，只为在日历上占位可见）
//   - SUMMARY = "记者名 — 标题"；UID 稳定可重复导入

func (s *exportService) ExportICS(ctx context.Context, req *dto.ExportDispatchesRequest) (*bytes.Buffer, string, error) {
	dispatches, from, to, err := s.queryRange(ctx, req)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//controltransmisiones//despachos//ES")

	now := time.Now().UTC()
	for i := range dispatches {
		d := &dispatches[i]

		dayStart, _ := s.normalizer.DayBounds(d.CivilDay)
		start := dayStart.Add(time.Duration(civildate.MinutesOfDay(d.ScheduledTime)) * time.Minute)

		summary := "Despacho"
		if d.Reporter != nil {
			summary = d.Reporter.Name
		}
		if d.Title != "" {
			summary += " — " + d.Title
		}

		evt := cal.AddEvent(fmt.Sprintf("dispatch-%d@controltransmisiones", d.ID))
		evt.SetDtStampTime(now)
		evt.SetStartAt(start)
		evt.SetEndAt(start.Add(icsDefaultDuration))
		evt.SetSummary(summary)
		if d.Reporter != nil && d.Reporter.City != nil {
			evt.SetLocation(d.Reporter.City.Name)
		}
		evt.SetDescription(fmt.Sprintf("Bloque %d · Estado: %s", d.SlotNumber, d.Status))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("despachos_%s_%s.ics", from, to)
	return buf, filename, nil
}
