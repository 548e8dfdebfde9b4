package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/uniplanner/uniplanner-api/internal/dto"
	"github.com/uniplanner/uniplanner-api/internal/models"
	"github.com/uniplanner/uniplanner-api/internal/service"
	appErrors "github.com/uniplanner/uniplanner-api/pkg/errors"
	"github.com/uniplanner/uniplanner-api/pkg/response"
)

type courseManager interface {
	ListByTerm(ctx context.Context, termID string, withSections bool) ([]models.Course, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, termID string, req dto.CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, id string, req dto.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id string) error
	AddSection(ctx context.Context, courseID string, req dto.CreateSectionRequest) (*models.Section, error)
	DeleteSection(ctx context.Context, id string) error
	AddMeeting(ctx context.Context, sectionID string, req dto.CreateMeetingRequest) (*models.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
}

// CourseHandler exposes catalog endpoints for courses, sections and meetings.
type CourseHandler struct {
	service courseManager
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(svc *service.CourseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// ListByTerm godoc
// @Summary List a term's courses
// @Tags Courses
// @Produce json
// @Param id path string true "Term ID"
// @Param withSections query bool false "Include sections and meetings"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/courses [get]
func (h *CourseHandler) ListByTerm(c *gin.Context) {
	withSections, _ := strconv.ParseBool(c.DefaultQuery("withSections", "true"))
	courses, err := h.service.ListByTerm(c.Request.Context(), c.Param("id"), withSections)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Get godoc
// @Summary Get a course with sections
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Create godoc
// @Summary Create a course under a term
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body dto.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /terms/{id}/courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Delete godoc
// @Summary Delete a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 204 "No Content"
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddSection godoc
// @Summary Add a section to a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.CreateSectionRequest true "Section payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/sections [post]
func (h *CourseHandler) AddSection(c *gin.Context) {
	var req dto.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid section payload"))
		return
	}
	section, err := h.service.AddSection(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// DeleteSection godoc
// @Summary Delete a section
// @Tags Courses
// @Produce json
// @Param id path string true "Section ID"
// @Success 204 "No Content"
// @Router /sections/{id} [delete]
func (h *CourseHandler) DeleteSection(c *gin.Context) {
	if err := h.service.DeleteSection(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddMeeting godoc
// @Summary Add a weekly meeting to a section
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body dto.CreateMeetingRequest true "Meeting payload"
// @Success 201 {object} response.Envelope
// @Router /sections/{id}/meetings [post]
func (h *CourseHandler) AddMeeting(c *gin.Context) {
	var req dto.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid meeting payload"))
		return
	}
	meeting, err := h.service.AddMeeting(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, meeting)
}

// DeleteMeeting godoc
// @Summary Delete a meeting
// @Tags Courses
// @Produce json
// @Param id path string true "Meeting ID"
// @Success 204 "No Content"
// @Router /meetings/{id} [delete]
func (h *CourseHandler) DeleteMeeting(c *gin.Context) {
	if err := h.service.DeleteMeeting(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
