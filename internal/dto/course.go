package dto

// CreateCourseRequest registers a course under a term. Color is optional;
// the service assigns the next palette color when omitted.
type CreateCourseRequest struct {
	Code     string `json:"code" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Credits  int    `json:"credits" validate:"min=0,max=40"`
	Required bool   `json:"required"`
	Color    string `json:"color" validate:"omitempty,hexcolor"`
	IsOnline bool   `json:"isOnline"`
}

// UpdateCourseRequest modifies course attributes.
type UpdateCourseRequest struct {
	Code     string `json:"code" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Credits  int    `json:"credits" validate:"min=0,max=40"`
	Required bool   `json:"required"`
	Color    string `json:"color" validate:"omitempty,hexcolor"`
	IsOnline bool   `json:"isOnline"`
}

// CreateSectionRequest adds a section to a course.
type CreateSectionRequest struct {
	Name       string  `json:"name" validate:"required"`
	Instructor *string `json:"instructor"`
	Capacity   *int    `json:"capacity" validate:"omitempty,min=1"`
	IsOnline   bool    `json:"isOnline"`
}

// CreateMeetingRequest adds one weekly time block to a section.
type CreateMeetingRequest struct {
	Day         string  `json:"day" validate:"required,oneof=Mon Tue Wed Thu Fri Sat Sun"`
	StartMinute int     `json:"startMinute" validate:"min=0,max=1439"`
	EndMinute   int     `json:"endMinute" validate:"min=1,max=1439"`
	Location    *string `json:"location"`
	Type        string  `json:"type" validate:"omitempty,oneof=LECTURE LAB RECITATION"`
}
