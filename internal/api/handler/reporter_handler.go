package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/minato696/controltransmisionesV4/internal/dto"
	"github.com/minato696/controltransmisionesV4/internal/service"
	"github.com/minato696/controltransmisionesV4/pkg/response"
)

// ReporterHandler 记者模块 HTTP 处理器
type ReporterHandler struct {
	reporterSvc service.ReporterService
}

// NewReporterHandler 创建 ReporterHandler
func NewReporterHandler(reporterSvc service.ReporterService) *ReporterHandler {
	return &ReporterHandler{reporterSvc: reporterSvc}
}

// ListReporters 记者列表
// GET /api/v1/reporters?include_last_dispatch=true
func (h *ReporterHandler) ListReporters(c *gin.Context) {
	var req dto.ReporterListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parámetros de consulta inválidos")
		return
	}

	reporters, err := h.reporterSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, reporters)
}

// GetReporter 记者详情（含派遣历史）
// GET /api/v1/reporters/:id
func (h *ReporterHandler) GetReporter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reporter, err := h.reporterSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleReporterError(c, err)
		return
	}

	response.OK(c, reporter)
}

// ListReportersByCity 按城市代码查记者
// GET /api/v1/reporters/city/:code
func (h *ReporterHandler) ListReportersByCity(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, "Código de ciudad requerido")
		return
	}

	reporters, err := h.reporterSvc.ListByCityCode(c.Request.Context(), code)
	if err != nil {
		h.handleReporterError(c, err)
		return
	}

	response.OK(c, reporters)
}

// CreateReporter 创建记者
// POST /api/v1/reporters
func (h *ReporterHandler) CreateReporter(c *gin.Context) {
	var req dto.CreateReporterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Se requieren name y city_id")
		return
	}

	reporter, err := h.reporterSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleReporterError(c, err)
		return
	}

	response.Created(c, reporter)
}

// UpdateReporter 局部更新记者
// PUT /api/v1/reporters/:id
func (h *ReporterHandler) UpdateReporter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateReporterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo de la solicitud inválido")
		return
	}

	reporter, err := h.reporterSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleReporterError(c, err)
		return
	}

	response.OK(c, reporter)
}

// DeleteReporter 删除记者（级联其派遣记录）
// DELETE /api/v1/reporters/:id
func (h *ReporterHandler) DeleteReporter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reporterSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleReporterError(c, err)
		return
	}

	response.Success(c)
}

func (h *ReporterHandler) handleReporterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReporterNotFound):
		response.NotFound(c, "Reportero no encontrado")
	case errors.Is(err, service.ErrCityNotFound):
		response.NotFound(c, "Ciudad no encontrada")
	default:
		response.InternalError(c)
	}
}
