package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/minato696/controltransmisionesV4/internal/dto"
	"github.com/minato696/controltransmisionesV4/internal/service"
	"github.com/minato696/controltransmisionesV4/pkg/civildate"
	"github.com/minato696/controltransmisionesV4/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock DispatchService ──

type mockDispatchService struct {
	listResult   []dto.DispatchResponse
	listErr      error
	upsertResult *dto.DispatchResponse
	upsertErr    error
	batchResult  []dto.DispatchResponse
	batchErr     error
	getResult    *dto.DispatchResponse
	getErr       error
	updateResult *dto.DispatchResponse
	updateErr    error
	deleteErr    error
}

func (m *mockDispatchService) List(_ context.Context, _ *dto.DispatchListRequest) ([]dto.DispatchResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockDispatchService) Upsert(_ context.Context, _ *dto.UpsertDispatchRequest) (*dto.DispatchResponse, error) {
	return m.upsertResult, m.upsertErr
}
func (m *mockDispatchService) UpsertBatch(_ context.Context, _ []dto.UpsertDispatchRequest) ([]dto.DispatchResponse, error) {
	return m.batchResult, m.batchErr
}
func (m *mockDispatchService) GetByID(_ context.Context, _ int64) (*dto.DispatchResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockDispatchService) Update(_ context.Context, _ int64, _ *dto.UpdateDispatchRequest) (*dto.DispatchResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockDispatchService) Delete(_ context.Context, _ int64) error {
	return m.deleteErr
}

// ── Mock StatisticsService ──

type mockStatisticsService struct {
	result *dto.StatisticsResponse
	err    error
}

func (m *mockStatisticsService) Report(_ context.Context, _ *dto.StatisticsRequest) (*dto.StatisticsResponse, error) {
	return m.result, m.err
}

// ── Mock ReporterService ──

type mockReporterService struct {
	listResult   []dto.ReporterResponse
	listErr      error
	getResult    *dto.ReporterDetailResponse
	getErr       error
	byCityResult []dto.ReporterResponse
	byCityErr    error
	createResult *dto.ReporterResponse
	createErr    error
	updateResult *dto.ReporterResponse
	updateErr    error
	deleteErr    error
}

func (m *mockReporterService) List(_ context.Context, _ *dto.ReporterListRequest) ([]dto.ReporterResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockReporterService) GetByID(_ context.Context, _ int64) (*dto.ReporterDetailResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockReporterService) ListByCityCode(_ context.Context, _ string) ([]dto.ReporterResponse, error) {
	return m.byCityResult, m.byCityErr
}
func (m *mockReporterService) Create(_ context.Context, _ *dto.CreateReporterRequest) (*dto.ReporterResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockReporterService) Update(_ context.Context, _ int64, _ *dto.UpdateReporterRequest) (*dto.ReporterResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockReporterService) Delete(_ context.Context, _ int64) error {
	return m.deleteErr
}

// ── Mock CityService ──

type mockCityService struct {
	listResult   []dto.CityResponse
	listErr      error
	getResult    *dto.CityResponse
	getErr       error
	createResult *dto.CityResponse
	createErr    error
	updateResult *dto.CityResponse
	updateErr    error
	deleteErr    error
}

func (m *mockCityService) List(_ context.Context, _ *dto.CityListRequest) ([]dto.CityResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockCityService) GetByID(_ context.Context, _ int64) (*dto.CityResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockCityService) Create(_ context.Context, _ *dto.CreateCityRequest) (*dto.CityResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockCityService) Update(_ context.Context, _ int64, _ *dto.UpdateCityRequest) (*dto.CityResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockCityService) Delete(_ context.Context, _ int64) error {
	return m.deleteErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportXLSX(_ context.Context, _ *dto.ExportDispatchesRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportICS(_ context.Context, _ *dto.ExportDispatchesRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func doRequest(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func parseError(w *httptest.ResponseRecorder) response.ErrorBody {
	var resp response.ErrorBody
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func ptr(s string) *string { return &s }

// ═══════════════════════════════════════════════════════════
// DispatchHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDispatchHandler_Upsert_Created(t *testing.T) {
	mock := &mockDispatchService{
		upsertResult: &dto.DispatchResponse{ID: 1, ReporterID: 7, SlotNumber: 1, CivilDay: "2025-03-10"},
	}
	h := NewDispatchHandler(mock)

	r := gin.New()
	r.POST("/dispatches", h.UpsertDispatch)
	w := doRequest(r, "POST", "/dispatches", jsonBody(dto.UpsertDispatchRequest{
		ReporterID: 7, SlotNumber: 1, CivilDay: "2025-03-10", Title: ptr("Marcha"),
	}))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	var resp dto.DispatchResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.CivilDay != "2025-03-10" {
		t.Errorf("负载应为记录本体: %+v", resp)
	}
}

func TestDispatchHandler_Upsert_MergedReturns200(t *testing.T) {
	mock := &mockDispatchService{
		upsertResult: &dto.DispatchResponse{ID: 1, Updated: true},
	}
	h := NewDispatchHandler(mock)

	r := gin.New()
	r.POST("/dispatches", h.UpsertDispatch)
	w := doRequest(r, "POST", "/dispatches", jsonBody(dto.UpsertDispatchRequest{
		ReporterID: 7, SlotNumber: 1, Title: ptr("x"),
	}))

	if w.Code != http.StatusOK {
		t.Errorf("合并命中应返回 200，got %d", w.Code)
	}
}

func TestDispatchHandler_Upsert_MissingRequiredFields(t *testing.T) {
	h := NewDispatchHandler(&mockDispatchService{})

	r := gin.New()
	r.POST("/dispatches", h.UpsertDispatch)
	// 缺 reporter_id 与 slot_number
	w := doRequest(r, "POST", "/dispatches", jsonBody(map[string]string{"title": "x"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if parseError(w).Error == "" {
		t.Error("错误体应为 {\"error\": ...}")
	}
}

func TestDispatchHandler_Upsert_InvalidDate(t *testing.T) {
	mock := &mockDispatchService{upsertErr: civildate.ErrInvalidDate}
	h := NewDispatchHandler(mock)

	r := gin.New()
	r.POST("/dispatches", h.UpsertDispatch)
	w := doRequest(r, "POST", "/dispatches", jsonBody(dto.UpsertDispatchRequest{
		ReporterID: 7, SlotNumber: 1, CivilDay: "mala-fecha", Title: ptr("x"),
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestDispatchHandler_Upsert_BlankDispatch(t *testing.T) {
	mock := &mockDispatchService{upsertErr: service.ErrBlankDispatch}
	h := NewDispatchHandler(mock)

	r := gin.New()
	r.POST("/dispatches", h.UpsertDispatch)
	w := doRequest(r, "POST", "/dispatches", jsonBody(dto.UpsertDispatchRequest{
		ReporterID: 7, SlotNumber: 1,
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestDispatchHandler_Upsert_ReporterNotFound(t *testing.T) {
	mock := &mockDispatchService{upsertErr: service.ErrReporterNotFound}
	h := NewDispatchHandler(mock)

	r := gin.New()
	r.POST("/dispatches", h.UpsertDispatch)
	w := doRequest(r, "POST", "/dispatches", jsonBody(dto.UpsertDispatchRequest{
		ReporterID: 999, SlotNumber: 1, Title: ptr("x"),
	}))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDispatchHandler_UpsertBatch_EmptyEntries(t *testing.T) {
	h := NewDispatchHandler(&mockDispatchService{})

	r := gin.New()
	r.POST("/dispatches/batch", h.UpsertDispatchBatch)
	w := doRequest(r, "POST", "/dispatches/batch", jsonBody(map[string]interface{}{
		"entries": []interface{}{},
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("空批次应返回 400, got %d", w.Code)
	}
}

func TestDispatchHandler_UpsertBatch_Success(t *testing.T) {
	mock := &mockDispatchService{
		batchResult: []dto.DispatchResponse{{ID: 1}, {ID: 2}},
	}
	h := NewDispatchHandler(mock)

	r := gin.New()
	r.POST("/dispatches/batch", h.UpsertDispatchBatch)
	w := doRequest(r, "POST", "/dispatches/batch", jsonBody(dto.UpsertDispatchBatchRequest{
		Entries: []dto.UpsertDispatchRequest{
			{ReporterID: 1, SlotNumber: 1, Title: ptr("a")},
			{ReporterID: 1, SlotNumber: 2, Title: ptr("b")},
		},
	}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp []dto.DispatchResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp) != 2 {
		t.Errorf("负载应为裸数组，长度 2: %s", w.Body.String())
	}
}

func TestDispatchHandler_Get_BadID(t *testing.T) {
	h := NewDispatchHandler(&mockDispatchService{})

	r := gin.New()
	r.GET("/dispatches/:id", h.GetDispatch)
	w := doRequest(r, "GET", "/dispatches/abc", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestDispatchHandler_Get_NotFound(t *testing.T) {
	mock := &mockDispatchService{getErr: service.ErrDispatchNotFound}
	h := NewDispatchHandler(mock)

	r := gin.New()
	r.GET("/dispatches/:id", h.GetDispatch)
	w := doRequest(r, "GET", "/dispatches/42", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDispatchHandler_Delete_Success(t *testing.T) {
	h := NewDispatchHandler(&mockDispatchService{})

	r := gin.New()
	r.DELETE("/dispatches/:id", h.DeleteDispatch)
	w := doRequest(r, "DELETE", "/dispatches/42", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp map[string]bool
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp["success"] {
		t.Errorf("删除应返回 {\"success\": true}: %s", w.Body.String())
	}
}

func TestDispatchHandler_List_Success(t *testing.T) {
	mock := &mockDispatchService{
		listResult: []dto.DispatchResponse{{ID: 1, CivilDay: "2025-03-10"}},
	}
	h := NewDispatchHandler(mock)

	r := gin.New()
	r.GET("/dispatches", h.ListDispatches)
	w := doRequest(r, "GET", "/dispatches?day=2025-03-10", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp []dto.DispatchResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp) != 1 {
		t.Errorf("负载应为裸数组: %s", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// StatisticsHandler Tests
// ═══════════════════════════════════════════════════════════

func TestStatisticsHandler_Get_Success(t *testing.T) {
	mock := &mockStatisticsService{
		result: &dto.StatisticsResponse{Total: 3},
	}
	h := NewStatisticsHandler(mock)

	r := gin.New()
	r.GET("/statistics", h.GetStatistics)
	w := doRequest(r, "GET", "/statistics?period=weekly", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp dto.StatisticsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 3 {
		t.Errorf("负载应为报表本体: %s", w.Body.String())
	}
}

func TestStatisticsHandler_Get_InvalidPeriod(t *testing.T) {
	h := NewStatisticsHandler(&mockStatisticsService{})

	r := gin.New()
	r.GET("/statistics", h.GetStatistics)
	w := doRequest(r, "GET", "/statistics?period=yearly", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestStatisticsHandler_Get_InvalidDate(t *testing.T) {
	mock := &mockStatisticsService{err: civildate.ErrInvalidDate}
	h := NewStatisticsHandler(mock)

	r := gin.New()
	r.GET("/statistics", h.GetStatistics)
	w := doRequest(r, "GET", "/statistics?period=daily&date=ayer", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ReporterHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReporterHandler_List_Success(t *testing.T) {
	mock := &mockReporterService{
		listResult: []dto.ReporterResponse{{ID: 1, Name: "Ana Torres"}},
	}
	h := NewReporterHandler(mock)

	r := gin.New()
	r.GET("/reporters", h.ListReporters)
	w := doRequest(r, "GET", "/reporters?include_last_dispatch=true", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestReporterHandler_ListByCity_NotFound(t *testing.T) {
	mock := &mockReporterService{byCityErr: service.ErrCityNotFound}
	h := NewReporterHandler(mock)

	r := gin.New()
	r.GET("/reporters/city/:code", h.ListReportersByCity)
	w := doRequest(r, "GET", "/reporters/city/XXX", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestReporterHandler_Create_MissingFields(t *testing.T) {
	h := NewReporterHandler(&mockReporterService{})

	r := gin.New()
	r.POST("/reporters", h.CreateReporter)
	w := doRequest(r, "POST", "/reporters", jsonBody(map[string]string{"name": "Ana"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("缺 city_id 应返回 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CityHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCityHandler_Create_DuplicateCode(t *testing.T) {
	mock := &mockCityService{createErr: service.ErrCityCodeExists}
	h := NewCityHandler(mock)

	r := gin.New()
	r.POST("/cities", h.CreateCity)
	w := doRequest(r, "POST", "/cities", jsonBody(dto.CreateCityRequest{Code: "LIM", Name: "Lima"}))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestCityHandler_Delete_HasReporters(t *testing.T) {
	mock := &mockCityService{deleteErr: service.ErrCityHasReporters}
	h := NewCityHandler(mock)

	r := gin.New()
	r.DELETE("/cities/:id", h.DeleteCity)
	w := doRequest(r, "DELETE", "/cities/1", nil)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_XLSX_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("xlsx-bytes"),
		filename: "despachos_2025-03-10_2025-03-12.xlsx",
	}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/export/dispatches.xlsx", h.ExportDispatchesXLSX)
	w := doRequest(r, "GET", "/export/dispatches.xlsx", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("Content-Type 错误: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("应设置 Content-Disposition")
	}
}

func TestExportHandler_ICS_Empty(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportNoDispatches}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/export/dispatches.ics", h.ExportDispatchesICS)
	w := doRequest(r, "GET", "/export/dispatches.ics", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
