package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fitQuestAPI/internal/gamification"
	"fitQuestAPI/internal/types/progress"
	"fitQuestAPI/middleware"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProgressService struct {
	db *pgxpool.Pool
}

func NewProgressService(db *pgxpool.Pool) *ProgressService {
	return &ProgressService{db: db}
}

// execQuerier is the slice of pgxpool.Pool and pgx.Tx the grant path needs,
// so a grant can ride the caller's transaction.
type execQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserIDByClerkID resolves the internal user id for a Clerk identity.
func (s *ProgressService) UserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("user not found")
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return id, nil
}

// GetProgress loads the stored snapshot and revalidates the cached level
// against the XP curve. A drifted level (XP written out of band) is healed in
// place before the snapshot is returned.
func (s *ProgressService) GetProgress(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, error) {
	query := `
	SELECT xp, level, level_name, total_workouts, current_streak, last_workout_date
	FROM user_progress
	WHERE user_id = $1
	`

	prog := &progress.UserProgress{}
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&prog.XP,
		&prog.Level,
		&prog.LevelName,
		&prog.TotalWorkouts,
		&prog.Streak,
		&prog.LastWorkoutDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// First read for a fresh account: seed the row lazily.
			return s.initProgress(ctx, s.db, userID)
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	if trueLevel := gamification.LevelFor(prog.XP); trueLevel != prog.Level {
		log.Printf("GetProgress: healing level drift for %s: stored %d, derived %d", userID, prog.Level, trueLevel)
		prog.Level = trueLevel
		prog.LevelName = gamification.LevelName(trueLevel)
		_, err = s.db.Exec(ctx,
			`UPDATE user_progress SET level = $2, level_name = $3, updated_at = NOW() WHERE user_id = $1`,
			userID, prog.Level, prog.LevelName)
		if err != nil {
			return nil, fmt.Errorf("failed to heal level: %w", err)
		}
	}

	prog.Progress = gamification.ProgressPercent(prog.XP, prog.Level)
	return prog, nil
}

func (s *ProgressService) initProgress(ctx context.Context, q execQuerier, userID uuid.UUID) (*progress.UserProgress, error) {
	prog := &progress.UserProgress{
		XP:        0,
		Level:     1,
		LevelName: gamification.LevelName(1),
	}
	_, err := q.Exec(ctx, `
	INSERT INTO user_progress (user_id, xp, level, level_name, total_workouts, current_streak, created_at, updated_at)
	VALUES ($1, 0, 1, $2, 0, 0, NOW(), NOW())
	ON CONFLICT (user_id) DO NOTHING
	`, userID, prog.LevelName)
	if err != nil {
		return nil, fmt.Errorf("failed to init progress: %w", err)
	}
	return prog, nil
}

// GrantXP applies a non-workout XP grant atomically and returns the updated
// snapshot plus whether the grant crossed a level boundary. Negative deltas
// are rejected; XP only ever grows.
func (s *ProgressService) GrantXP(ctx context.Context, userID uuid.UUID, amount int, reason progress.XPReason) (*progress.UserProgress, bool, error) {
	prog, levelUp, err := s.grantXP(ctx, s.db, userID, amount)
	if err != nil {
		return nil, false, err
	}
	middleware.RecordXPGrant(string(reason), amount)
	return prog, levelUp, nil
}

// grantXP is the core of GrantXP, running against whatever handle the caller
// passes. Callers that settle a reward inside their own transaction pass the
// tx, so the payout commits or rolls back with the write that earned it.
// Metrics are the caller's job: nothing is counted until the grant is durable.
func (s *ProgressService) grantXP(ctx context.Context, q execQuerier, userID uuid.UUID, amount int) (*progress.UserProgress, bool, error) {
	if amount <= 0 {
		return nil, false, fmt.Errorf("xp grant must be positive, got %d", amount)
	}

	query := `
	UPDATE user_progress
	SET xp = xp + $2, updated_at = NOW()
	WHERE user_id = $1
	RETURNING xp, level, level_name, total_workouts, current_streak, last_workout_date
	`

	prog := &progress.UserProgress{}
	err := q.QueryRow(ctx, query, userID, amount).Scan(
		&prog.XP,
		&prog.Level,
		&prog.LevelName,
		&prog.TotalWorkouts,
		&prog.Streak,
		&prog.LastWorkoutDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, err := s.initProgress(ctx, q, userID); err != nil {
				return nil, false, err
			}
			return s.grantXP(ctx, q, userID, amount)
		}
		return nil, false, fmt.Errorf("failed to grant xp: %w", err)
	}

	levelUp := false
	if newLevel := gamification.LevelFor(prog.XP); newLevel != prog.Level {
		levelUp = newLevel > prog.Level
		prog.Level = newLevel
		prog.LevelName = gamification.LevelName(newLevel)
		_, err = q.Exec(ctx,
			`UPDATE user_progress SET level = $2, level_name = $3, updated_at = NOW() WHERE user_id = $1`,
			userID, prog.Level, prog.LevelName)
		if err != nil {
			return nil, false, fmt.Errorf("failed to persist level: %w", err)
		}
	}

	prog.Progress = gamification.ProgressPercent(prog.XP, prog.Level)
	return prog, levelUp, nil
}

// GrantXPForReason grants the fixed amount attached to a flat-rate reason.
func (s *ProgressService) GrantXPForReason(ctx context.Context, userID uuid.UUID, reason progress.XPReason) (*progress.UserProgress, bool, error) {
	amount, ok := progress.ReasonXP[reason]
	if !ok {
		return nil, false, fmt.Errorf("no fixed xp amount for reason %q", reason)
	}
	return s.GrantXP(ctx, userID, amount, reason)
}

// DailyLogin pays the flat login bonus at most once per calendar day. The
// guarded update is the dedup: a second call the same day affects zero rows
// and grants nothing. Marker and grant commit together, so a failed grant
// never burns the day.
func (s *ProgressService) DailyLogin(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, bool, error) {
	amount := progress.ReasonXP[progress.ReasonDailyLogin]

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin daily login: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
	UPDATE user_progress
	SET last_daily_login = CURRENT_DATE, updated_at = NOW()
	WHERE user_id = $1 AND (last_daily_login IS NULL OR last_daily_login < CURRENT_DATE)
	`, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record daily login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		prog, err := s.GetProgress(ctx, userID)
		return prog, false, err
	}

	prog, _, err := s.grantXP(ctx, tx, userID, amount)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit daily login: %w", err)
	}

	middleware.RecordXPGrant(string(progress.ReasonDailyLogin), amount)
	return prog, true, nil
}

// ReconcileProgress rebuilds streak, total and last-workout-date from the full
// workout history. It is the repair path after deletes or backdated edits: the
// result depends only on the history, so running it twice is harmless.
func (s *ProgressService) ReconcileProgress(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, error) {
	workouts, err := loadWorkoutHistory(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	streak := gamification.RecomputeStreak(workouts, time.Now())
	middleware.RecordStreakRecomputation()

	var lastDate *time.Time
	for i := range workouts {
		if lastDate == nil || workouts[i].Date.After(*lastDate) {
			d := workouts[i].Date
			lastDate = &d
		}
	}

	query := `
	UPDATE user_progress
	SET current_streak = $2, total_workouts = $3, last_workout_date = $4, updated_at = NOW()
	WHERE user_id = $1
	RETURNING xp, level, level_name, total_workouts, current_streak, last_workout_date
	`

	prog := &progress.UserProgress{}
	err = s.db.QueryRow(ctx, query, userID, streak, len(workouts), lastDate).Scan(
		&prog.XP,
		&prog.Level,
		&prog.LevelName,
		&prog.TotalWorkouts,
		&prog.Streak,
		&prog.LastWorkoutDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile progress: %w", err)
	}

	if trueLevel := gamification.LevelFor(prog.XP); trueLevel != prog.Level {
		prog.Level = trueLevel
		prog.LevelName = gamification.LevelName(trueLevel)
		_, err = s.db.Exec(ctx,
			`UPDATE user_progress SET level = $2, level_name = $3, updated_at = NOW() WHERE user_id = $1`,
			userID, prog.Level, prog.LevelName)
		if err != nil {
			return nil, fmt.Errorf("failed to persist level: %w", err)
		}
	}

	prog.Progress = gamification.ProgressPercent(prog.XP, prog.Level)
	return prog, nil
}
