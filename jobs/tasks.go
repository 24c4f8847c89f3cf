package jobs

import (
	"context"
	"time"

	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/widya-sms/widya-sms/internal/access"
	jobmetrics "github.com/widya-sms/widya-sms/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAssignmentIntegrity scans the assignment ledger for invariant drift.
	TaskAssignmentIntegrity = "assignment:integrity"
	// TaskAccessCacheWarmup preloads role rule sets into the Redis cache.
	TaskAccessCacheWarmup = "access:cache_warmup"
)

// NewAssignmentIntegrityTask constructs the ledger integrity scan task.
func NewAssignmentIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskAssignmentIntegrity, nil)
}

// NewAccessCacheWarmupTask constructs the permission cache warmup task.
func NewAccessCacheWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskAccessCacheWarmup, nil)
}

// NewAssignmentIntegrityHandler scans for duplicate slot rows and for
// assignments whose teacher no longer holds the subject qualification.
// The unique index makes duplicates impossible through the application
// path, so any finding points at manual data edits.
func NewAssignmentIntegrityHandler(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskAssignmentIntegrity)
		start := time.Now()

		var duplicates int
		err := pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM (
				SELECT subject_id, grade_level_id, academic_year_id
				FROM teacher_assignments
				GROUP BY subject_id, grade_level_id, academic_year_id
				HAVING COUNT(*) > 1
			) d`).Scan(&duplicates)
		if err != nil {
			return tracker.End(err)
		}

		var unqualified int
		err = pool.QueryRow(ctx, `
			SELECT COUNT(*)
			FROM teacher_assignments a
			LEFT JOIN teacher_qualifications q
			  ON q.teacher_id = a.teacher_id AND q.subject_id = a.subject_id
			WHERE q.teacher_id IS NULL`).Scan(&unqualified)
		if err != nil {
			return tracker.End(err)
		}

		metrics.AddAnomalies("duplicate_slot", duplicates)
		metrics.AddAnomalies("unqualified_assignment", unqualified)

		if duplicates > 0 || unqualified > 0 {
			logger.Warn("assignment integrity findings",
				slog.Int("duplicate_slots", duplicates),
				slog.Int("unqualified_assignments", unqualified))
		} else {
			logger.Info("assignment integrity clean", slog.Duration("took", time.Since(start)))
		}
		return tracker.End(nil)
	}
}

// NewAccessCacheWarmupHandler loads the rule set of every configured role
// into the cache so first requests after a deploy avoid the store round trip.
func NewAccessCacheWarmupHandler(pool *pgxpool.Pool, store access.Store, cache *access.RuleCache, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskAccessCacheWarmup)
		rows, err := pool.Query(ctx, `SELECT DISTINCT role FROM role_permissions`)
		if err != nil {
			return tracker.End(err)
		}
		defer rows.Close()

		var roles []string
		for rows.Next() {
			var role string
			if err := rows.Scan(&role); err != nil {
				return tracker.End(err)
			}
			roles = append(roles, role)
		}
		if err := rows.Err(); err != nil {
			return tracker.End(err)
		}

		for _, role := range roles {
			gen, err := cache.Generation(ctx, role)
			if err != nil {
				logger.Warn("cache warmup generation", slog.String("role", role), slog.Any("error", err))
				continue
			}
			rules, err := store.ListRoleRules(ctx, role)
			if err != nil {
				return tracker.End(err)
			}
			if err := cache.Set(ctx, role, gen, rules); err != nil {
				logger.Warn("cache warmup set", slog.String("role", role), slog.Any("error", err))
			}
		}
		logger.Info("access cache warmed", slog.Int("roles", len(roles)))
		return tracker.End(nil)
	}
}
