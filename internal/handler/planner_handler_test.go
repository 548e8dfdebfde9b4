package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplanner/uniplanner-api/internal/dto"
	"github.com/uniplanner/uniplanner-api/internal/models"
	"github.com/uniplanner/uniplanner-api/internal/service"
	appErrors "github.com/uniplanner/uniplanner-api/pkg/errors"
)

type plannerRunnerMock struct {
	captured   dto.GenerateRequest
	rescored   dto.RescoreRequest
	generated  *dto.GenerateResponse
	rescoreErr error
}

func (m *plannerRunnerMock) Generate(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateResponse, error) {
	m.captured = req
	if m.generated != nil {
		return m.generated, nil
	}
	return &dto.GenerateResponse{ResultSetID: "rs-1", TermID: req.TermID}, nil
}

func (m *plannerRunnerMock) Rescore(ctx context.Context, req dto.RescoreRequest) (*dto.ResultSetResponse, error) {
	m.rescored = req
	if m.rescoreErr != nil {
		return nil, m.rescoreErr
	}
	return &dto.ResultSetResponse{ResultSetID: req.ResultSetID}, nil
}

func (m *plannerRunnerMock) GetResultSet(ctx context.Context, id string, page, pageSize int) (*dto.ResultSetResponse, *models.Pagination, error) {
	return &dto.ResultSetResponse{ResultSetID: id}, &models.Pagination{Page: page, PageSize: pageSize}, nil
}

func (m *plannerRunnerMock) ListResultSets(ctx context.Context) ([]dto.ResultSetSummary, error) {
	return []dto.ResultSetSummary{{ResultSetID: "rs-1"}}, nil
}

func (m *plannerRunnerMock) ExpireResultSet(ctx context.Context, id string) error {
	return nil
}

func (m *plannerRunnerMock) TogglePin(ctx context.Context, resultSetID, scheduleID string) (*models.GeneratedSchedule, error) {
	return &models.GeneratedSchedule{ID: scheduleID, Pinned: true}, nil
}

type exporterMock struct {
	format string
}

func (m *exporterMock) Export(ctx context.Context, resultSetID, scheduleID, format string) (*service.ExportResult, error) {
	m.format = format
	return &service.ExportResult{Payload: []byte("data"), ContentType: "text/csv", Filename: "schedule.csv"}, nil
}

func TestPlannerGenerateEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &plannerRunnerMock{}
	h := &PlannerHandler{planner: mockSvc}

	payload := []byte(`{"termId":"term-1","filters":{"lunchBreak":true},"weights":{"freeDays":90,"lateStart":10,"gaps":50,"spread":20}}`)
	req, _ := http.NewRequest(http.MethodPost, "/planner/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "term-1", mockSvc.captured.TermID)
	assert.True(t, mockSvc.captured.Filters.LunchBreak)
	require.NotNil(t, mockSvc.captured.Weights)
	assert.Equal(t, 90, mockSvc.captured.Weights.FreeDays)
}

func TestPlannerGenerateEndpointBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &PlannerHandler{planner: &plannerRunnerMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/planner/generate", bytes.NewReader([]byte(`{"termId":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlannerRescoreEndpointExpired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &plannerRunnerMock{rescoreErr: appErrors.Clone(appErrors.ErrResultSetExpired, "")}
	h := &PlannerHandler{planner: mockSvc}

	payload := []byte(`{"resultSetId":"rs-1","weights":{"freeDays":10,"lateStart":10,"gaps":10,"spread":10}}`)
	req, _ := http.NewRequest(http.MethodPost, "/planner/rescore", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Rescore(c)

	require.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "rs-1", mockSvc.rescored.ResultSetID)
}

func TestPlannerTogglePinEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &PlannerHandler{planner: &plannerRunnerMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/planner/results/rs-1/schedules/sched-1/pin", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "rs-1"}, {Key: "scheduleId", Value: "sched-1"}}

	h.TogglePin(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pinned":true`)
}

func TestPlannerExportEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exporter := &exporterMock{}
	h := &PlannerHandler{planner: &plannerRunnerMock{}, exporter: exporter}

	req, _ := http.NewRequest(http.MethodGet, "/planner/results/rs-1/schedules/sched-1/export?format=csv", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "rs-1"}, {Key: "scheduleId", Value: "sched-1"}}

	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedule.csv")
}
