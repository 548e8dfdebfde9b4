package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplanner/uniplanner-api/internal/models"
)

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository instantiates a course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListByTerm returns the term's courses without their sections.
func (r *CourseRepository) ListByTerm(ctx context.Context, termID string) ([]models.Course, error) {
	const query = `SELECT id, term_id, code, name, credits, required, color, is_online, created_at, updated_at FROM courses WHERE term_id = $1 ORDER BY code ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, termID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListByTermWithSections returns the term's courses with sections and
// meetings attached, ready for the generation engine.
func (r *CourseRepository) ListByTermWithSections(ctx context.Context, termID string) ([]models.Course, error) {
	courses, err := r.ListByTerm(ctx, termID)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return courses, nil
	}

	const sectionQuery = `SELECT s.id, s.course_id, s.name, s.instructor, s.capacity, s.is_online, s.created_at, s.updated_at FROM sections s JOIN courses c ON c.id = s.course_id WHERE c.term_id = $1 ORDER BY s.name ASC`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, sectionQuery, termID); err != nil {
		return nil, fmt.Errorf("list term sections: %w", err)
	}

	const meetingQuery = `SELECT m.id, m.section_id, m.day_of_week, m.start_minute, m.end_minute, m.location, m.type, m.created_at FROM meetings m JOIN sections s ON s.id = m.section_id JOIN courses c ON c.id = s.course_id WHERE c.term_id = $1 ORDER BY m.day_of_week ASC, m.start_minute ASC`
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, meetingQuery, termID); err != nil {
		return nil, fmt.Errorf("list term meetings: %w", err)
	}

	meetingsBySection := make(map[string][]models.Meeting, len(sections))
	for _, m := range meetings {
		meetingsBySection[m.SectionID] = append(meetingsBySection[m.SectionID], m)
	}
	sectionsByCourse := make(map[string][]models.Section, len(courses))
	for _, s := range sections {
		s.Meetings = meetingsBySection[s.ID]
		sectionsByCourse[s.CourseID] = append(sectionsByCourse[s.CourseID], s)
	}
	for i := range courses {
		courses[i].Sections = sectionsByCourse[courses[i].ID]
	}
	return courses, nil
}

// FindByID loads a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, term_id, code, name, credits, required, color, is_online, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByCode checks code uniqueness within a term.
func (r *CourseRepository) ExistsByCode(ctx context.Context, termID, code, excludeID string) (bool, error) {
	base := "SELECT 1 FROM courses WHERE term_id = $1 AND code = $2"
	args := []interface{}{termID, code}
	if excludeID != "" {
		base += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course uniqueness: %w", err)
	}
	return true, nil
}

// CountByTerm returns how many courses the term carries.
func (r *CourseRepository) CountByTerm(ctx context.Context, termID string) (int, error) {
	const query = `SELECT COUNT(*) FROM courses WHERE term_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, termID); err != nil {
		return 0, fmt.Errorf("count term courses: %w", err)
	}
	return count, nil
}

// Create inserts a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, term_id, code, name, credits, required, color, is_online, created_at, updated_at) VALUES (:id, :term_id, :code, :name, :credits, :required, :color, :is_online, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET code = :code, name = :name, credits = :credits, required = :required, color = :color, is_online = :is_online, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course and cascades to its sections and meetings.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
