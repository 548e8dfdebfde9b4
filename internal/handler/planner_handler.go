package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/uniplanner/uniplanner-api/internal/dto"
	"github.com/uniplanner/uniplanner-api/internal/models"
	"github.com/uniplanner/uniplanner-api/internal/service"
	appErrors "github.com/uniplanner/uniplanner-api/pkg/errors"
	"github.com/uniplanner/uniplanner-api/pkg/response"
)

type plannerRunner interface {
	Generate(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateResponse, error)
	Rescore(ctx context.Context, req dto.RescoreRequest) (*dto.ResultSetResponse, error)
	GetResultSet(ctx context.Context, id string, page, pageSize int) (*dto.ResultSetResponse, *models.Pagination, error)
	ListResultSets(ctx context.Context) ([]dto.ResultSetSummary, error)
	ExpireResultSet(ctx context.Context, id string) error
	TogglePin(ctx context.Context, resultSetID, scheduleID string) (*models.GeneratedSchedule, error)
}

type scheduleExporter interface {
	Export(ctx context.Context, resultSetID, scheduleID, format string) (*service.ExportResult, error)
}

// PlannerHandler exposes schedule generation endpoints.
type PlannerHandler struct {
	planner  plannerRunner
	exporter scheduleExporter
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(planner *service.PlannerService, exporter *service.ExportService) *PlannerHandler {
	return &PlannerHandler{planner: planner, exporter: exporter}
}

// Generate godoc
// @Summary Generate conflict-free schedules for a term
// @Description Enumerates every valid section combination, filters it and returns a ranked result set.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRequest true "Generate payload"
// @Success 200 {object} response.Envelope
// @Router /planner/generate [post]
func (h *PlannerHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.planner.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Rescore godoc
// @Summary Re-rank a stored result set under new weights
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.RescoreRequest true "Rescore payload"
// @Success 200 {object} response.Envelope
// @Router /planner/rescore [post]
func (h *PlannerHandler) Rescore(c *gin.Context) {
	var req dto.RescoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rescore payload"))
		return
	}
	result, err := h.planner.Rescore(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GetResultSet godoc
// @Summary Fetch a stored result set
// @Tags Planner
// @Produce json
// @Param id path string true "Result set ID"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size, 0 returns every schedule"
// @Success 200 {object} response.Envelope
// @Router /planner/results/{id} [get]
func (h *PlannerHandler) GetResultSet(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))
	result, pagination, err := h.planner.GetResultSet(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, pagination)
}

// ListResultSets godoc
// @Summary List result sets still held in memory
// @Tags Planner
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /planner/results [get]
func (h *PlannerHandler) ListResultSets(c *gin.Context) {
	summaries, err := h.planner.ListResultSets(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// ExpireResultSet godoc
// @Summary Drop a stored result set ahead of its TTL
// @Tags Planner
// @Produce json
// @Param id path string true "Result set ID"
// @Success 204 "No Content"
// @Router /planner/results/{id} [delete]
func (h *PlannerHandler) ExpireResultSet(c *gin.Context) {
	if err := h.planner.ExpireResultSet(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// TogglePin godoc
// @Summary Toggle the pin flag on one schedule
// @Tags Planner
// @Produce json
// @Param id path string true "Result set ID"
// @Param scheduleId path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /planner/results/{id}/schedules/{scheduleId}/pin [post]
func (h *PlannerHandler) TogglePin(c *gin.Context) {
	schedule, err := h.planner.TogglePin(c.Request.Context(), c.Param("id"), c.Param("scheduleId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Export godoc
// @Summary Export one schedule as csv, pdf or ics
// @Tags Planner
// @Produce octet-stream
// @Param id path string true "Result set ID"
// @Param scheduleId path string true "Schedule ID"
// @Param format query string true "Export format" Enums(csv, pdf, ics)
// @Success 200 {file} binary
// @Router /planner/results/{id}/schedules/{scheduleId}/export [get]
func (h *PlannerHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "ics")
	result, err := h.exporter.Export(c.Request.Context(), c.Param("id"), c.Param("scheduleId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
