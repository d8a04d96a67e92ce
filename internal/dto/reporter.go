package dto

// ReporterListRequest GET /reporters 查询参数
type ReporterListRequest struct {
	IncludeLastDispatch bool `form:"include_last_dispatch"`
}

// CreateReporterRequest POST /reporters 请求体
type CreateReporterRequest struct {
	Name   string `json:"name" binding:"required"`
	CityID int64  `json:"city_id" binding:"required"`
	Status string `json:"status" binding:"omitempty,oneof=active absent inactive"`
}

// UpdateReporterRequest PUT /reporters/:id 局部更新
type UpdateReporterRequest struct {
	Name   *string `json:"name"`
	CityID *int64  `json:"city_id"`
	Status *string `json:"status" binding:"omitempty,oneof=active absent inactive"`
}

// ReporterResponse 记者响应
type ReporterResponse struct {
	ID     int64         `json:"id"`
	Name   string        `json:"name"`
	CityID int64         `json:"city_id"`
	Status string        `json:"status"`
	City   *CityResponse `json:"city,omitempty"`

	// include_last_dispatch=true 时附加
	LastDispatch      string `json:"last_dispatch,omitempty"`       // "10/3/2025, 14:30" 或 "Sin despachos"
	WeekDispatchCount *int64 `json:"week_dispatch_count,omitempty"` // 本周（周一至今）派遣数
}

// ReporterDetailResponse 记者详情（含派遣历史）
type ReporterDetailResponse struct {
	ReporterResponse
	Dispatches []DispatchResponse `json:"dispatches"`
}
