package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniplanner/uniplanner-api/internal/dto"
	"github.com/uniplanner/uniplanner-api/internal/models"
	appErrors "github.com/uniplanner/uniplanner-api/pkg/errors"
)

type courseRepository interface {
	ListByTerm(ctx context.Context, termID string) ([]models.Course, error)
	ListByTermWithSections(ctx context.Context, termID string) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByCode(ctx context.Context, termID, code, excludeID string) (bool, error)
	CountByTerm(ctx context.Context, termID string) (int, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type sectionRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Section, error)
	FindByID(ctx context.Context, id string) (*models.Section, error)
	Create(ctx context.Context, section *models.Section) error
	Update(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id string) error
	CreateMeeting(ctx context.Context, meeting *models.Meeting) error
	DeleteMeeting(ctx context.Context, id string) error
}

type courseTermReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// CourseService manages a term's course catalog, its sections and meetings.
// Catalog writes invalidate cached generation results for all terms.
type CourseService struct {
	terms     courseTermReader
	courses   courseRepository
	sections  sectionRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a course service.
func NewCourseService(
	terms courseTermReader,
	courses courseRepository,
	sections sectionRepository,
	cache cacheInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		terms:     terms,
		courses:   courses,
		sections:  sections,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// ListByTerm returns the term's catalog, optionally with sections and meetings.
func (s *CourseService) ListByTerm(ctx context.Context, termID string, withSections bool) ([]models.Course, error) {
	if _, err := s.ensureTerm(ctx, termID); err != nil {
		return nil, err
	}
	var courses []models.Course
	var err error
	if withSections {
		courses, err = s.courses.ListByTermWithSections(ctx, termID)
	} else {
		courses, err = s.courses.ListByTerm(ctx, termID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get loads a course with its sections.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	sections, err := s.sections.ListByCourse(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course sections")
	}
	course.Sections = sections
	return course, nil
}

// Create registers a course under the term. An omitted color picks the next
// palette entry by catalog position.
func (s *CourseService) Create(ctx context.Context, termID string, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if _, err := s.ensureTerm(ctx, termID); err != nil {
		return nil, err
	}
	exists, err := s.courses.ExistsByCode(ctx, termID, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course code %s already exists in this term", req.Code))
	}

	color := req.Color
	if color == "" {
		count, countErr := s.courses.CountByTerm(ctx, termID)
		if countErr != nil {
			return nil, appErrors.Wrap(countErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count term courses")
		}
		color = models.CourseColors[count%len(models.CourseColors)]
	}

	course := &models.Course{
		TermID:   termID,
		Code:     req.Code,
		Name:     req.Name,
		Credits:  req.Credits,
		Required: req.Required,
		Color:    color,
		IsOnline: req.IsOnline,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.invalidateGenerations(ctx)
	return course, nil
}

// Update modifies course attributes.
func (s *CourseService) Update(ctx context.Context, id string, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Code != course.Code {
		exists, existsErr := s.courses.ExistsByCode(ctx, course.TermID, req.Code, course.ID)
		if existsErr != nil {
			return nil, appErrors.Wrap(existsErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course code %s already exists in this term", req.Code))
		}
	}
	course.Code = req.Code
	course.Name = req.Name
	course.Credits = req.Credits
	course.Required = req.Required
	if req.Color != "" {
		course.Color = req.Color
	}
	course.IsOnline = req.IsOnline
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.invalidateGenerations(ctx)
	return course, nil
}

// Delete removes a course and everything under it.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidateGenerations(ctx)
	return nil
}

// AddSection attaches a new section to a course.
func (s *CourseService) AddSection(ctx context.Context, courseID string, req dto.CreateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	section := &models.Section{
		CourseID:   courseID,
		Name:       req.Name,
		Instructor: req.Instructor,
		Capacity:   req.Capacity,
		IsOnline:   req.IsOnline,
	}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	s.invalidateGenerations(ctx)
	return section, nil
}

// DeleteSection removes a section and its meetings.
func (s *CourseService) DeleteSection(ctx context.Context, id string) error {
	if _, err := s.sections.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if err := s.sections.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}
	s.invalidateGenerations(ctx)
	return nil
}

// AddMeeting attaches a weekly time block to a section.
func (s *CourseService) AddMeeting(ctx context.Context, sectionID string, req dto.CreateMeetingRequest) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting payload")
	}
	if req.EndMinute <= req.StartMinute {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endMinute must be greater than startMinute")
	}
	if _, err := s.sections.FindByID(ctx, sectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	meetingType := models.MeetingType(req.Type)
	if meetingType == "" {
		meetingType = models.MeetingLecture
	}
	meeting := &models.Meeting{
		SectionID:   sectionID,
		Day:         models.DayOfWeek(req.Day),
		StartMinute: req.StartMinute,
		EndMinute:   req.EndMinute,
		Location:    req.Location,
		Type:        meetingType,
	}
	if err := s.sections.CreateMeeting(ctx, meeting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create meeting")
	}
	s.invalidateGenerations(ctx)
	return meeting, nil
}

// DeleteMeeting removes a single meeting.
func (s *CourseService) DeleteMeeting(ctx context.Context, id string) error {
	if err := s.sections.DeleteMeeting(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete meeting")
	}
	s.invalidateGenerations(ctx)
	return nil
}

func (s *CourseService) ensureTerm(ctx context.Context, termID string) (*models.Term, error) {
	term, err := s.terms.FindByID(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}

func (s *CourseService) invalidateGenerations(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "planner:generate:*"); err != nil {
		s.logger.Warn("generation cache invalidation failed", zap.Error(err))
	}
}
