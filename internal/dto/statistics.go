package dto

// StatisticsRequest GET /statistics 查询参数。
// period=daily 时配合 date；period=weekly 时可配合 from/to 指定任意区间；
// 均缺省时按原有口径取默认区间（见 service 层）。
type StatisticsRequest struct {
	Period string `form:"period" binding:"omitempty,oneof=daily weekly monthly"`
	Date   string `form:"date"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// CityRank 城市排名项（top 5）
type CityRank struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	Pct   int    `json:"pct"`
}

// ReporterRank 记者排名项（top 5）
type ReporterRank struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	Count int    `json:"count"`
	Pct   int    `json:"pct"`
}

// HistogramEntry 单日计数。直方图固定 7 项、按日递增且连续，零计数也占位。
type HistogramEntry struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// HourCount 高峰时段项，hour 形如 "14:00"
type HourCount struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// TimeOfDayBucket 固定三段时段分布：Mañana [6,12) / Tarde [12,18) / Noche [18,24)。
// pct 以「可解析出小时的派遣总数」为分母。
type TimeOfDayBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
	Pct   int    `json:"pct"`
}

// ReporterStats 单个记者的区间明细
type ReporterStats struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	City       string  `json:"city"`
	Total      int     `json:"total"`
	Titled     int     `json:"titled"`
	Live       int     `json:"live"`
	Problem    int     `json:"problem"`
	TitledPct  float64 `json:"titled_pct"`
	LivePct    float64 `json:"live_pct"`
	ProblemPct float64 `json:"problem_pct"`
}

// PeriodInfo 报表区间回显
type PeriodInfo struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
}

// StatisticsResponse 区间统计报表。所有字段均为对输入记录集的纯折叠，
// 不含任何随机性，同一输入必然产出同一报表。
type StatisticsResponse struct {
	Total               int               `json:"total"`
	DailyAverage        float64           `json:"daily_average"`
	ActiveReporters     int               `json:"active_reporters"`
	InactiveReporters   int               `json:"inactive_reporters"`
	NationalCoveragePct float64           `json:"national_coverage_pct"`
	LiveCount           int               `json:"live_count"`
	LivePct             float64           `json:"live_pct"`
	ProblemCount        int               `json:"problem_count"`
	ProblemPct          float64           `json:"problem_pct"`
	TitledCount         int               `json:"titled_count"`
	TitledPct           float64           `json:"titled_pct"`
	TopCities           []CityRank        `json:"top_cities"`
	TopReporters        []ReporterRank    `json:"top_reporters"`
	DailyHistogram      []HistogramEntry  `json:"daily_histogram"`
	PeakHours           []HourCount       `json:"peak_hours"`
	TimeOfDay           []TimeOfDayBucket `json:"time_of_day"`
	ReporterDetail      []ReporterStats   `json:"reporter_detail"`
	Period              PeriodInfo        `json:"period"`
}

// ExportDispatchesRequest GET /export/dispatches.{xlsx,ics} 查询参数
type ExportDispatchesRequest struct {
	From       string `form:"from"`
	To         string `form:"to"`
	ReporterID int64  `form:"reporter_id"`
}
