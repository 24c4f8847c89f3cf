package catalog

import "time"

// Subject is a taught discipline.
type Subject struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GradeLevel is a year band within the school.
type GradeLevel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// AcademicYear is a school year window.
type AcademicYear struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	StartsOn  time.Time `json:"starts_on"`
	EndsOn    time.Time `json:"ends_on"`
	IsCurrent bool      `json:"is_current"`
}

// Teacher is the subset of staff data the assignment screens need.
type Teacher struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}
