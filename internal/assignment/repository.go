package assignment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository defines persistence for qualifications and the assignment
// ledger.
type Repository interface {
	QualifiedTeachers(ctx context.Context, subjectID int64) ([]int64, error)
	IsQualified(ctx context.Context, teacherID, subjectID int64) (bool, error)
	GrantQualification(ctx context.Context, q Qualification) error
	RevokeQualification(ctx context.Context, teacherID, subjectID int64) error
	SlotHolder(ctx context.Context, slot Slot) (*Assignment, error)
	Insert(ctx context.Context, a Assignment) (int64, error)
	Delete(ctx context.Context, id int64) error
	ListByYear(ctx context.Context, academicYearID int64) ([]Assignment, error)
}

// PGRepository implements Repository using PostgreSQL. The unique index on
// (subject_id, grade_level_id, academic_year_id) is the final arbiter of
// slot uniqueness under concurrent writers.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// QualifiedTeachers returns the deduplicated teacher ids eligible for a
// subject. No ordering is guaranteed.
func (r *PGRepository) QualifiedTeachers(ctx context.Context, subjectID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT teacher_id FROM teacher_qualifications WHERE subject_id = $1`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var teachers []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		teachers = append(teachers, id)
	}
	return teachers, rows.Err()
}

// IsQualified reports whether the teacher holds the subject qualification.
func (r *PGRepository) IsQualified(ctx context.Context, teacherID, subjectID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM teacher_qualifications WHERE teacher_id = $1 AND subject_id = $2
		)`, teacherID, subjectID).Scan(&exists)
	return exists, err
}

// GrantQualification records eligibility. Granting twice is a no-op.
func (r *PGRepository) GrantQualification(ctx context.Context, q Qualification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO teacher_qualifications (teacher_id, subject_id)
		VALUES ($1, $2)
		ON CONFLICT (teacher_id, subject_id) DO NOTHING`, q.TeacherID, q.SubjectID)
	return err
}

// RevokeQualification deletes the eligibility fact.
func (r *PGRepository) RevokeQualification(ctx context.Context, teacherID, subjectID int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM teacher_qualifications WHERE teacher_id = $1 AND subject_id = $2`,
		teacherID, subjectID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SlotHolder returns the assignment occupying the slot, ErrNotFound when
// the slot is free.
func (r *PGRepository) SlotHolder(ctx context.Context, slot Slot) (*Assignment, error) {
	var a Assignment
	err := r.pool.QueryRow(ctx, `
		SELECT id, teacher_id, subject_id, grade_level_id, academic_year_id, assigned_by, created_at
		FROM teacher_assignments
		WHERE subject_id = $1 AND grade_level_id = $2 AND academic_year_id = $3`,
		slot.SubjectID, slot.GradeLevelID, slot.AcademicYearID).
		Scan(&a.ID, &a.TeacherID, &a.SubjectID, &a.GradeLevelID, &a.AcademicYearID, &a.AssignedBy, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Insert writes the assignment in one atomic check-and-insert. A second
// concurrent writer for the same slot observes ErrSlotOccupied, never a
// silent overwrite.
func (r *PGRepository) Insert(ctx context.Context, a Assignment) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO teacher_assignments (teacher_id, subject_id, grade_level_id, academic_year_id, assigned_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (subject_id, grade_level_id, academic_year_id) DO NOTHING
		RETURNING id`,
		a.TeacherID, a.SubjectID, a.GradeLevelID, a.AcademicYearID, a.AssignedBy).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSlotOccupied
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrSlotOccupied
		}
		return 0, err
	}
	return id, nil
}

// Delete frees the slot held by the assignment.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM teacher_assignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByYear returns all assignments for an academic year.
func (r *PGRepository) ListByYear(ctx context.Context, academicYearID int64) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, teacher_id, subject_id, grade_level_id, academic_year_id, assigned_by, created_at
		FROM teacher_assignments
		WHERE academic_year_id = $1
		ORDER BY subject_id, grade_level_id`, academicYearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.TeacherID, &a.SubjectID, &a.GradeLevelID, &a.AcademicYearID, &a.AssignedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
