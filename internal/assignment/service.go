package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/widya-sms/widya-sms/internal/shared"
)

// Auditor records ledger changes. shared.AuditLogger satisfies it.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service resolves teacher assignments against qualifications and the
// ledger. Qualification is a business rule checked here; slot uniqueness
// is a data-integrity rule the repository enforces at write time, so even
// callers bypassing this service cannot break it.
type Service struct {
	repo  Repository
	audit Auditor
}

// NewService constructs a Service. audit may be nil.
func NewService(repo Repository, audit Auditor) *Service {
	return &Service{repo: repo, audit: audit}
}

// AvailableTeachers lists teachers qualified for the slot's subject that
// do not already hold this exact slot. Holding the same subject in a
// different grade or year does not make a teacher unavailable.
func (s *Service) AvailableTeachers(ctx context.Context, slot Slot) ([]int64, error) {
	qualified, err := s.repo.QualifiedTeachers(ctx, slot.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("assignment: qualified teachers: %w", err)
	}

	holder, err := s.repo.SlotHolder(ctx, slot)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("assignment: slot holder: %w", err)
	}

	available := make([]int64, 0, len(qualified))
	for _, teacherID := range qualified {
		if holder != nil && holder.TeacherID == teacherID {
			continue
		}
		available = append(available, teacherID)
	}
	return available, nil
}

// SlotHolder returns the assignment occupying the slot, ErrNotFound when
// the slot is free.
func (s *Service) SlotHolder(ctx context.Context, slot Slot) (*Assignment, error) {
	return s.repo.SlotHolder(ctx, slot)
}

// RequestAssignment validates and commits a new assignment. Returns
// ErrNotQualified before touching the ledger, and propagates
// ErrSlotOccupied from the ledger's atomic insert.
func (s *Service) RequestAssignment(ctx context.Context, teacherID int64, slot Slot, assignedBy int64) (int64, error) {
	qualified, err := s.repo.IsQualified(ctx, teacherID, slot.SubjectID)
	if err != nil {
		return 0, fmt.Errorf("assignment: check qualification: %w", err)
	}
	if !qualified {
		return 0, ErrNotQualified
	}

	id, err := s.repo.Insert(ctx, Assignment{
		TeacherID:      teacherID,
		SubjectID:      slot.SubjectID,
		GradeLevelID:   slot.GradeLevelID,
		AcademicYearID: slot.AcademicYearID,
		AssignedBy:     assignedBy,
	})
	if err != nil {
		return 0, err
	}

	s.record(ctx, shared.AuditLog{
		ActorID:  assignedBy,
		Action:   "assignment.create",
		Entity:   "teacher_assignment",
		EntityID: fmt.Sprintf("%d", id),
		Meta: map[string]any{
			"teacher_id":       teacherID,
			"subject_id":       slot.SubjectID,
			"grade_level_id":   slot.GradeLevelID,
			"academic_year_id": slot.AcademicYearID,
		},
	})
	return id, nil
}

// RemoveAssignment frees the slot held by the assignment. ErrNotFound when
// the id was already removed or never existed.
func (s *Service) RemoveAssignment(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "assignment.remove",
		Entity:   "teacher_assignment",
		EntityID: fmt.Sprintf("%d", id),
	})
	return nil
}

// GrantQualification records that a teacher may teach a subject.
// Idempotent.
func (s *Service) GrantQualification(ctx context.Context, q Qualification, actorID int64) error {
	if err := s.repo.GrantQualification(ctx, q); err != nil {
		return fmt.Errorf("assignment: grant qualification: %w", err)
	}
	s.record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "qualification.grant",
		Entity:   "teacher_qualification",
		EntityID: fmt.Sprintf("%d:%d", q.TeacherID, q.SubjectID),
	})
	return nil
}

// RevokeQualification removes eligibility. Existing assignments are not
// recalled; revocation only blocks future assignments.
func (s *Service) RevokeQualification(ctx context.Context, teacherID, subjectID int64, actorID int64) error {
	if err := s.repo.RevokeQualification(ctx, teacherID, subjectID); err != nil {
		return err
	}
	s.record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "qualification.revoke",
		Entity:   "teacher_qualification",
		EntityID: fmt.Sprintf("%d:%d", teacherID, subjectID),
	})
	return nil
}

// QualifiedTeachers lists teacher ids eligible for a subject.
func (s *Service) QualifiedTeachers(ctx context.Context, subjectID int64) ([]int64, error) {
	return s.repo.QualifiedTeachers(ctx, subjectID)
}

// ListByYear returns all assignments for an academic year.
func (s *Service) ListByYear(ctx context.Context, academicYearID int64) ([]Assignment, error) {
	return s.repo.ListByYear(ctx, academicYearID)
}

func (s *Service) record(ctx context.Context, log shared.AuditLog) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, log)
}
