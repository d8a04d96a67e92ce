package dto

// DispatchListRequest GET /dispatches 查询参数。
// day 与 from/to 互斥，均为 YYYY-MM-DD；无法解析的日期参数按约定
// 只记日志并忽略过滤条件，不作为硬错误。
type DispatchListRequest struct {
	Day        string `form:"day"`
	From       string `form:"from"`
	To         string `form:"to"`
	ReporterID int64  `form:"reporter_id"`
	CityCode   string `form:"city_code"`
}

// UpsertDispatchRequest POST /dispatches 请求体。
// (reporter_id, slot_number, civil_day) 为去重键；civil_day 为空时取
// 目标时区的今天。指针字段缺省表示「保留已有值」。
type UpsertDispatchRequest struct {
	ReporterID    int64   `json:"reporter_id" binding:"required"`
	SlotNumber    int     `json:"slot_number" binding:"required,min=1"`
	CivilDay      string  `json:"civil_day"`
	Title         *string `json:"title"`
	ScheduledTime *string `json:"scheduled_time"`
	LiveTime      *string `json:"live_time"`
	Status        *string `json:"status" binding:"omitempty,oneof=scheduled completed problem"`
}

// UpsertDispatchBatchRequest POST /dispatches/batch 请求体
type UpsertDispatchBatchRequest struct {
	Entries []UpsertDispatchRequest `json:"entries" binding:"required,min=1,dive"`
}

// UpdateDispatchRequest PUT /dispatches/:id 局部更新（按 id 点更新）
type UpdateDispatchRequest struct {
	Title         *string `json:"title"`
	ScheduledTime *string `json:"scheduled_time"`
	LiveTime      *string `json:"live_time"`
	Status        *string `json:"status" binding:"omitempty,oneof=scheduled completed problem"`
	CivilDay      *string `json:"civil_day"`
}

// DispatchResponse 派遣记录响应。
// civil_day 为 ISO 日期，civil_day_display 为 es-PE 展示格式的冗余字段。
type DispatchResponse struct {
	ID              int64             `json:"id"`
	ReporterID      int64             `json:"reporter_id"`
	SlotNumber      int               `json:"slot_number"`
	Title           string            `json:"title"`
	ScheduledTime   string            `json:"scheduled_time"`
	LiveTime        string            `json:"live_time"`
	CivilDay        string            `json:"civil_day"`
	CivilDayDisplay string            `json:"civil_day_display"`
	Status          string            `json:"status"`
	Updated         bool              `json:"updated,omitempty"` // Upsert 命中已有记录时为 true
	Reporter        *ReporterResponse `json:"reporter,omitempty"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
}
