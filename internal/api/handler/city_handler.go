package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/minato696/controltransmisionesV4/internal/dto"
	"github.com/minato696/controltransmisionesV4/internal/service"
	"github.com/minato696/controltransmisionesV4/pkg/response"
)

// CityHandler 城市模块 HTTP 处理器
type CityHandler struct {
	citySvc service.CityService
}

// NewCityHandler 创建 CityHandler
func NewCityHandler(citySvc service.CityService) *CityHandler {
	return &CityHandler{citySvc: citySvc}
}

// ListCities 城市列表
// GET /api/v1/cities?include_reporters=true
func (h *CityHandler) ListCities(c *gin.Context) {
	var req dto.CityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parámetros de consulta inválidos")
		return
	}

	cities, err := h.citySvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, cities)
}

// GetCity 城市详情
// GET /api/v1/cities/:id
func (h *CityHandler) GetCity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	city, err := h.citySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleCityError(c, err)
		return
	}

	response.OK(c, city)
}

// CreateCity 创建城市
// POST /api/v1/cities
func (h *CityHandler) CreateCity(c *gin.Context) {
	var req dto.CreateCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Se requieren code y name")
		return
	}

	city, err := h.citySvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleCityError(c, err)
		return
	}

	response.Created(c, city)
}

// UpdateCity 局部更新城市（code 不可变）
// PUT /api/v1/cities/:id
func (h *CityHandler) UpdateCity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo de la solicitud inválido")
		return
	}

	city, err := h.citySvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleCityError(c, err)
		return
	}

	response.OK(c, city)
}

// DeleteCity 删除城市（名下有记者时拒绝）
// DELETE /api/v1/cities/:id
func (h *CityHandler) DeleteCity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.citySvc.Delete(c.Request.Context(), id); err != nil {
		h.handleCityError(c, err)
		return
	}

	response.Success(c)
}

func (h *CityHandler) handleCityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCityNotFound):
		response.NotFound(c, "Ciudad no encontrada")
	case errors.Is(err, service.ErrCityCodeExists):
		response.Conflict(c, "El código de ciudad ya está en uso")
	case errors.Is(err, service.ErrCityHasReporters):
		response.Conflict(c, "La ciudad aún tiene reporteros asignados")
	default:
		response.InternalError(c)
	}
}
