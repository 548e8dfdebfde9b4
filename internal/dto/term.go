package dto

// CreateTermRequest registers a new academic period.
type CreateTermRequest struct {
	Name         string `json:"name" validate:"required"`
	AcademicYear string `json:"academicYear" validate:"required"`
}

// UpdateTermRequest modifies an existing term.
type UpdateTermRequest struct {
	Name         string `json:"name" validate:"required"`
	AcademicYear string `json:"academicYear" validate:"required"`
}
