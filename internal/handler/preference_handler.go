package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplanner/uniplanner-api/internal/dto"
	"github.com/uniplanner/uniplanner-api/internal/service"
	appErrors "github.com/uniplanner/uniplanner-api/pkg/errors"
	"github.com/uniplanner/uniplanner-api/pkg/response"
)

type preferenceManager interface {
	Save(ctx context.Context, req dto.SavePreferenceRequest) (*dto.PreferenceResponse, error)
	Get(ctx context.Context, termID string) (*dto.PreferenceResponse, error)
	Delete(ctx context.Context, termID string) error
}

// PreferenceHandler exposes planner preference endpoints.
type PreferenceHandler struct {
	service preferenceManager
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(svc *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: svc}
}

// Get godoc
// @Summary Get planner preferences for a term
// @Description Returns stored filters and weights, or defaults when nothing was saved.
// @Tags Preferences
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/preferences [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	pref, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// Save godoc
// @Summary Save planner preferences for a term
// @Tags Preferences
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body dto.SavePreferenceRequest true "Preference payload"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/preferences [put]
func (h *PreferenceHandler) Save(c *gin.Context) {
	var req dto.SavePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preference payload"))
		return
	}
	req.TermID = c.Param("id")
	pref, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// Delete godoc
// @Summary Delete planner preferences for a term
// @Tags Preferences
// @Produce json
// @Param id path string true "Term ID"
// @Success 204 "No Content"
// @Router /terms/{id}/preferences [delete]
func (h *PreferenceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
