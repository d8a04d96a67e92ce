package dto

// CityListRequest GET /cities 查询参数
type CityListRequest struct {
	IncludeReporters bool `form:"include_reporters"`
}

// CreateCityRequest POST /cities 请求体
type CreateCityRequest struct {
	Code   string `json:"code" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Active *bool  `json:"active"`
}

// UpdateCityRequest PUT /cities/:id 局部更新（code 不可变，不提供修改入口）
type UpdateCityRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

// CityResponse 城市响应
type CityResponse struct {
	ID            int64              `json:"id"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	Active        bool               `json:"active"`
	ReporterCount int64              `json:"reporter_count"`
	Reporters     []ReporterResponse `json:"reporters,omitempty"`
}
