package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/minato696/controltransmisionesV4/internal/dto"
	"github.com/minato696/controltransmisionesV4/internal/service"
	"github.com/minato696/controltransmisionesV4/pkg/civildate"
	"github.com/minato696/controltransmisionesV4/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportDispatchesXLSX 导出派遣记录为 Excel
// GET /api/v1/export/dispatches.xlsx?from=&to=&reporter_id=
func (h *ExportHandler) ExportDispatchesXLSX(c *gin.Context) {
	var req dto.ExportDispatchesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parámetros de consulta inválidos")
		return
	}

	buf, filename, err := h.exportSvc.ExportXLSX(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// ExportDispatchesICS 导出派遣记录为 iCalendar
// GET /api/v1/export/dispatches.ics?from=&to=&reporter_id=
func (h *ExportHandler) ExportDispatchesICS(c *gin.Context) {
	var req dto.ExportDispatchesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parámetros de consulta inválidos")
		return
	}

	buf, filename, err := h.exportSvc.ExportICS(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentTypeICS, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, civildate.ErrInvalidDate):
		response.BadRequest(c, "Formato de fecha inválido")
	case errors.Is(err, service.ErrExportNoDispatches):
		response.NotFound(c, "No hay despachos en el rango solicitado")
	default:
		response.InternalError(c)
	}
}
