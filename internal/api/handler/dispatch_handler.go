package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/minato696/controltransmisionesV4/internal/dto"
	"github.com/minato696/controltransmisionesV4/internal/service"
	"github.com/minato696/controltransmisionesV4/pkg/civildate"
	"github.com/minato696/controltransmisionesV4/pkg/response"
)

// DispatchHandler 派遣模块 HTTP 处理器
type DispatchHandler struct {
	dispatchSvc service.DispatchService
}

// NewDispatchHandler 创建 DispatchHandler
func NewDispatchHandler(dispatchSvc service.DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatchSvc: dispatchSvc}
}

// ListDispatches 范围查询派遣记录
// GET /api/v1/dispatches?day=&from=&to=&reporter_id=&city_code=
func (h *DispatchHandler) ListDispatches(c *gin.Context) {
	var req dto.DispatchListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parámetros de consulta inválidos")
		return
	}

	dispatches, err := h.dispatchSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, dispatches)
}

// UpsertDispatch 按 (reporter, slot, civil_day) 建或改
// POST /api/v1/dispatches
func (h *DispatchHandler) UpsertDispatch(c *gin.Context) {
	var req dto.UpsertDispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Se requieren reporter_id y slot_number")
		return
	}

	dispatch, err := h.dispatchSvc.Upsert(c.Request.Context(), &req)
	if err != nil {
		h.handleDispatchError(c, err)
		return
	}

	if dispatch.Updated {
		response.OK(c, dispatch)
		return
	}
	response.Created(c, dispatch)
}

// UpsertDispatchBatch 批量建或改，整批原子
// POST /api/v1/dispatches/batch
func (h *DispatchHandler) UpsertDispatchBatch(c *gin.Context) {
	var req dto.UpsertDispatchBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cada entrada requiere reporter_id y slot_number")
		return
	}

	dispatches, err := h.dispatchSvc.UpsertBatch(c.Request.Context(), req.Entries)
	if err != nil {
		h.handleDispatchError(c, err)
		return
	}

	response.OK(c, dispatches)
}

// GetDispatch 获取单条派遣记录
// GET /api/v1/dispatches/:id
func (h *DispatchHandler) GetDispatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	dispatch, err := h.dispatchSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleDispatchError(c, err)
		return
	}

	response.OK(c, dispatch)
}

// UpdateDispatch 按 id 局部更新
// PUT /api/v1/dispatches/:id
func (h *DispatchHandler) UpdateDispatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo de la solicitud inválido")
		return
	}

	dispatch, err := h.dispatchSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleDispatchError(c, err)
		return
	}

	response.OK(c, dispatch)
}

// DeleteDispatch 删除派遣记录
// DELETE /api/v1/dispatches/:id
func (h *DispatchHandler) DeleteDispatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.dispatchSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleDispatchError(c, err)
		return
	}

	response.Success(c)
}

func (h *DispatchHandler) handleDispatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, civildate.ErrInvalidDate):
		response.BadRequest(c, "Formato de fecha inválido")
	case errors.Is(err, service.ErrBlankDispatch):
		response.BadRequest(c, "El despacho no tiene contenido")
	case errors.Is(err, service.ErrReporterNotFound):
		response.NotFound(c, "Reportero no encontrado")
	case errors.Is(err, service.ErrDispatchNotFound):
		response.NotFound(c, "Despacho no encontrado")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		response.Conflict(c, "Ya existe un despacho para ese reportero, bloque y fecha")
	default:
		response.InternalError(c)
	}
}
