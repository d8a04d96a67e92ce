package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/minato696/controltransmisionesV4/internal/dto"
	"github.com/minato696/controltransmisionesV4/internal/service"
	"github.com/minato696/controltransmisionesV4/pkg/civildate"
	"github.com/minato696/controltransmisionesV4/pkg/response"
)

// StatisticsHandler 统计模块 HTTP 处理器
type StatisticsHandler struct {
	statsSvc service.StatisticsService
}

// NewStatisticsHandler 创建 StatisticsHandler
func NewStatisticsHandler(statsSvc service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsSvc: statsSvc}
}

// GetStatistics 区间统计报表
// GET /api/v1/statistics?period=daily|weekly|monthly&date=&from=&to=
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	var req dto.StatisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Período inválido: use daily, weekly o monthly")
		return
	}

	report, err := h.statsSvc.Report(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, civildate.ErrInvalidDate) {
			response.BadRequest(c, "Formato de fecha inválido")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, report)
}
