package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplanner/uniplanner-api/internal/models"
)

// SectionRepository handles persistence for sections and their meetings.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository instantiates a section repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// ListByCourse returns a course's sections with meetings attached.
func (r *SectionRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Section, error) {
	const query = `SELECT id, course_id, name, instructor, capacity, is_online, created_at, updated_at FROM sections WHERE course_id = $1 ORDER BY name ASC`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, courseID); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}

	for i := range sections {
		meetings, err := r.ListMeetings(ctx, sections[i].ID)
		if err != nil {
			return nil, err
		}
		sections[i].Meetings = meetings
	}
	return sections, nil
}

// FindByID loads a section and its meetings.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, course_id, name, instructor, capacity, is_online, created_at, updated_at FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	meetings, err := r.ListMeetings(ctx, section.ID)
	if err != nil {
		return nil, err
	}
	section.Meetings = meetings
	return &section, nil
}

// Create inserts a new section record.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	section.UpdatedAt = now

	const query = `INSERT INTO sections (id, course_id, name, instructor, capacity, is_online, created_at, updated_at) VALUES (:id, :course_id, :name, :instructor, :capacity, :is_online, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// Update modifies an existing section.
func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sections SET name = :name, instructor = :instructor, capacity = :capacity, is_online = :is_online, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// Delete removes a section and cascades to its meetings.
func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}

// ListMeetings returns a section's meetings ordered by day then start.
func (r *SectionRepository) ListMeetings(ctx context.Context, sectionID string) ([]models.Meeting, error) {
	const query = `SELECT id, section_id, day_of_week, start_minute, end_minute, location, type, created_at FROM meetings WHERE section_id = $1 ORDER BY day_of_week ASC, start_minute ASC`
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, query, sectionID); err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return meetings, nil
}

// CreateMeeting inserts a new meeting record.
func (r *SectionRepository) CreateMeeting(ctx context.Context, meeting *models.Meeting) error {
	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}
	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO meetings (id, section_id, day_of_week, start_minute, end_minute, location, type, created_at) VALUES (:id, :section_id, :day_of_week, :start_minute, :end_minute, :location, :type, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, meeting); err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}
	return nil
}

// DeleteMeeting removes a single meeting.
func (r *SectionRepository) DeleteMeeting(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	return nil
}
