package assignment

import (
	"errors"
	"time"
)

var (
	// ErrNotQualified rejects an assignment for a teacher without the
	// subject qualification. The ledger is never touched.
	ErrNotQualified = errors.New("assignment: teacher not qualified for subject")
	// ErrSlotOccupied rejects an assignment for a slot that already has a
	// teacher. Callers re-query availability or unassign first.
	ErrSlotOccupied = errors.New("assignment: slot already occupied")
	// ErrNotFound indicates that the requested record does not exist.
	ErrNotFound = errors.New("assignment: not found")
)

// Qualification asserts that a teacher is eligible to teach a subject.
// It has no temporal scope; once granted it holds until revoked.
type Qualification struct {
	TeacherID int64 `json:"teacher_id"`
	SubjectID int64 `json:"subject_id"`
}

// Slot is the addressable unit of assignment.
type Slot struct {
	SubjectID      int64 `json:"subject_id"`
	GradeLevelID   int64 `json:"grade_level_id"`
	AcademicYearID int64 `json:"academic_year_id"`
}

// Assignment records that one teacher occupies one slot. At most one
// assignment exists per slot at any time; co-teaching is not supported.
type Assignment struct {
	ID             int64     `json:"id"`
	TeacherID      int64     `json:"teacher_id"`
	SubjectID      int64     `json:"subject_id"`
	GradeLevelID   int64     `json:"grade_level_id"`
	AcademicYearID int64     `json:"academic_year_id"`
	AssignedBy     int64     `json:"assigned_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// Slot returns the slot the assignment occupies.
func (a Assignment) Slot() Slot {
	return Slot{
		SubjectID:      a.SubjectID,
		GradeLevelID:   a.GradeLevelID,
		AcademicYearID: a.AcademicYearID,
	}
}
