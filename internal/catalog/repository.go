package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides read-only lookups backing the assignment screens.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListSubjects returns all subjects ordered by code.
func (r *Repository) ListSubjects(ctx context.Context) ([]Subject, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, name, created_at FROM subjects ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subjects []Subject
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// ListGradeLevels returns all grade levels in rank order.
func (r *Repository) ListGradeLevels(ctx context.Context) ([]GradeLevel, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, rank FROM grade_levels ORDER BY rank`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var levels []GradeLevel
	for rows.Next() {
		var g GradeLevel
		if err := rows.Scan(&g.ID, &g.Name, &g.Rank); err != nil {
			return nil, err
		}
		levels = append(levels, g)
	}
	return levels, rows.Err()
}

// ListAcademicYears returns academic years, newest first.
func (r *Repository) ListAcademicYears(ctx context.Context) ([]AcademicYear, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, starts_on, ends_on, is_current FROM academic_years ORDER BY starts_on DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var years []AcademicYear
	for rows.Next() {
		var y AcademicYear
		if err := rows.Scan(&y.ID, &y.Name, &y.StartsOn, &y.EndsOn, &y.IsCurrent); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// ListTeachers returns a page of active teachers plus the total count.
func (r *Repository) ListTeachers(ctx context.Context, limit, offset int) ([]Teacher, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM teachers WHERE is_active`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, full_name, email, is_active
		FROM teachers
		WHERE is_active
		ORDER BY full_name
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var teachers []Teacher
	for rows.Next() {
		var t Teacher
		if err := rows.Scan(&t.ID, &t.FullName, &t.Email, &t.IsActive); err != nil {
			return nil, 0, err
		}
		teachers = append(teachers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("catalog: list teachers: %w", err)
	}
	return teachers, total, nil
}
