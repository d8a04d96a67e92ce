// Package civildate 提供固定目标时区（利马，UTC-5，无夏令时）下的民用日期运算。
//
// 设计约束：任何输入（日期字符串或绝对时间戳）只在进入本包时做一次时区换算，
// 换算后得到的 Day 不再携带时区信息。下游一律基于已解析的 Day 计算，
// 杜绝「宿主时区 + 目标时区」双重换算引入的跨天错误。
package civildate

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrInvalidDate 日期字符串无法解析
var ErrInvalidDate = errors.New("无效的日期格式")

// StorageLayout 存储/接口层统一的日期格式
const StorageLayout = "2006-01-02"

var bareDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Lima 返回目标民用时区：秘鲁利马，固定 UTC-5，无夏令时。
// 使用 FixedZone 而非 LoadLocation，避免依赖宿主机的 tzdata。
func Lima() *time.Location {
	return time.FixedZone("America/Lima", -5*60*60)
}

// ── Day 民用日期值类型 ──

// Day 目标时区下的一个日历日。不含时刻、不含时区，仅参与日级运算。
// 零值无效，由 IsZero 判别。
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDay 构造民用日期（自动规范化，如 2 月 30 日 → 3 月 2 日）。
func NewDay(year int, month time.Month, day int) Day {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Day{Year: y, Month: m, Day: d}
}

// MustParse 解析 YYYY-MM-DD，失败时 panic。仅用于测试与常量初始化。
func MustParse(s string) Day {
	d, err := parseBare(s)
	if err != nil {
		panic(fmt.Sprintf("civildate.MustParse(%q): %v", s, err))
	}
	return d
}

func parseBare(s string) (Day, error) {
	if !bareDateRe.MatchString(s) {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.Parse(StorageLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}, nil
}

// String 存储格式 YYYY-MM-DD
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero 是否为零值
func (d Day) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

// AddDays 加减天数
func (d Day) AddDays(n int) Day {
	return NewDay(d.Year, d.Month, d.Day+n)
}

// Weekday 星期几
func (d Day) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Before 严格早于
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After 严格晚于
func (d Day) After(other Day) bool { return other.Before(d) }

// Equal 同一天
func (d Day) Equal(other Day) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// DayCount 闭区间 [from, to] 的天数。from 晚于 to 时返回 0。
func DayCount(from, to Day) int {
	a := time.Date(from.Year, from.Month, from.Day, 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year, to.Month, to.Day, 0, 0, 0, 0, time.UTC)
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours()/24) + 1
}

// ── 数据库映射（参照 PostgreSQL DATE 列） ──

// Value 实现 driver.Valuer：写入为 UTC 午夜的 DATE 值
func (d Day) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC), nil
}

// Scan 实现 sql.Scanner：接受 time.Time / string / []byte。
// DATE 列不带时区，驱动返回什么历法日就取什么历法日，不做换算。
func (d *Day) Scan(src interface{}) error {
	if src == nil {
		*d = Day{}
		return nil
	}
	switch v := src.(type) {
	case time.Time:
		y, m, dd := v.Date()
		*d = Day{Year: y, Month: m, Day: dd}
		return nil
	case string:
		parsed, err := parseBare(v)
		if err != nil {
			return fmt.Errorf("civildate.Day.Scan: %w", err)
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("civildate.Day.Scan: unsupported type %T", src)
	}
}

// GormDataType 告知 GORM 对应 DATE 列
func (Day) GormDataType() string { return "date" }

// MarshalJSON 序列化为 "YYYY-MM-DD"
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON 解析 "YYYY-MM-DD"
func (d *Day) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	parsed, err := parseBare(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ── Normalizer 日期归一化器 ──

// Normalizer 所有日期归一化的唯一入口，持有注入的目标时区。
// Now 可在测试中替换以固定「今天」。
type Normalizer struct {
	loc *time.Location

	Now func() time.Time
}

// NewNormalizer 创建归一化器。loc 为 nil 时使用利马时区。
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = Lima()
	}
	return &Normalizer{loc: loc, Now: time.Now}
}

// Location 返回目标时区
func (n *Normalizer) Location() *time.Location { return n.loc }

// ParseDay 解析日期输入：
//   - 裸日期 YYYY-MM-DD → 直接视为目标时区的该日历日（与调用方本地时区无关）
//   - RFC3339 时间戳 → 先换算到目标时区再取日历日
func (n *Normalizer) ParseDay(s string) (Day, error) {
	if bareDateRe.MatchString(s) {
		return parseBare(s)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return n.DayOf(t), nil
	}
	return Day{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// DayOf 绝对时间戳落在目标时区的哪个日历日
func (n *Normalizer) DayOf(t time.Time) Day {
	y, m, d := t.In(n.loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// Today 目标时区的当前日历日（与宿主进程时区配置无关）
func (n *Normalizer) Today() Day {
	return n.DayOf(n.Now())
}

// DayBounds 返回该日历日在目标时区的起止瞬间：
// [00:00:00.000, 23:59:59.999]。保证且仅保证该区间内的任意时刻经
// DayOf 映射回同一天。
func (n *Normalizer) DayBounds(d Day) (start, end time.Time) {
	start = time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, n.loc)
	end = time.Date(d.Year, d.Month, d.Day, 23, 59, 59, int(999*time.Millisecond), n.loc)
	return start, end
}

// RangeBounds 返回闭区间 [from, to] 的起止瞬间
func (n *Normalizer) RangeBounds(from, to Day) (start, end time.Time) {
	start, _ = n.DayBounds(from)
	_, end = n.DayBounds(to)
	return start, end
}

// WeekBounds 返回 d 所在周的周一与周日（周从周一开始）
func (n *Normalizer) WeekBounds(d Day) (monday, sunday Day) {
	offset := int(d.Weekday()) // Sunday=0
	if offset == 0 {
		offset = 7
	}
	monday = d.AddDays(1 - offset)
	sunday = monday.AddDays(6)
	return monday, sunday
}

// MonthBounds 返回 d 所在月的首日与末日
func (n *Normalizer) MonthBounds(d Day) (first, last Day) {
	first = NewDay(d.Year, d.Month, 1)
	last = NewDay(d.Year, d.Month+1, 0)
	return first, last
}

// ── HH:MM 时刻字符串辅助 ──

// HourOf 提取 HH:MM 的小时部分。无法解析或越界时 ok=false。
func HourOf(timeStr string) (hour int, ok bool) {
	var h, m int
	if _, err := fmt.Sscanf(timeStr, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h, true
}

// MinutesOfDay HH:MM → 自午夜起的分钟数。无法解析时返回 0。
func MinutesOfDay(timeStr string) int {
	var h, m int
	if _, err := fmt.Sscanf(timeStr, "%d:%d", &h, &m); err != nil {
		return 0
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0
	}
	return h*60 + m
}

// ── 展示格式化（es-PE，与原有前端口径一致） ──

var spanishWeekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
var spanishWeekdaysShort = [...]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"}
var spanishMonths = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}
var spanishMonthsShort = [...]string{"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic"}

// DisplayOptions 展示格式选项
type DisplayOptions struct {
	IncludeWeekday bool
	Short          bool
}

// FormatForDisplay 西语长/短格式：
//   - 长格式  "10 de marzo de 2025"（带星期："lunes, 10 de marzo de 2025"）
//   - 短格式  "10 mar 2025"（带星期："lun, 10 mar 2025"）
func FormatForDisplay(d Day, opts DisplayOptions) string {
	wd := d.Weekday()
	var out string
	if opts.Short {
		out = fmt.Sprintf("%d %s %d", d.Day, spanishMonthsShort[d.Month-1], d.Year)
		if opts.IncludeWeekday {
			out = spanishWeekdaysShort[wd] + ", " + out
		}
		return out
	}
	out = fmt.Sprintf("%d de %s de %d", d.Day, spanishMonths[d.Month-1], d.Year)
	if opts.IncludeWeekday {
		out = spanishWeekdays[wd] + ", " + out
	}
	return out
}
