package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"fitQuestAPI/internal/gamification"
	"fitQuestAPI/internal/types/progress"
	"fitQuestAPI/internal/types/workout"
	"fitQuestAPI/middleware"
	"fitQuestAPI/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WorkoutService struct {
	db            *pgxpool.Pool
	progress      *ProgressService
	notifications *NotificationService
}

func NewWorkoutService(db *pgxpool.Pool, progress *ProgressService, notifications *NotificationService) *WorkoutService {
	return &WorkoutService{db: db, progress: progress, notifications: notifications}
}

// SaveWorkout persists one session and applies the full XP pipeline in a
// single transaction: insert, XP calculation against the prior history,
// streak advance and milestone bonus. The snapshot update and the insert
// commit together, so a failure leaves no half-applied grant.
func (s *WorkoutService) SaveWorkout(ctx context.Context, userID uuid.UUID, req *workout.SaveWorkoutRequest) (*workout.Workout, *progress.WorkoutXPResult, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid workout date: %w", err)
	}

	prog, err := s.progress.GetProgress(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	history, err := loadWorkoutHistory(ctx, s.db, userID)
	if err != nil {
		return nil, nil, err
	}

	w := &workout.Workout{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		Duration:  req.Duration,
		StartTime: req.StartTime,
		Exercises: req.Exercises,
		LoggedAt:  time.Now(),
	}
	result := gamification.CalculateWorkoutXP(w, history, prog)

	exercisesJSON, err := json.Marshal(w.Exercises)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode exercises: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
	INSERT INTO workouts (id, user_id, date, duration_minutes, start_time, exercises, logged_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, w.ID, w.UserID, w.Date, w.Duration, w.StartTime, exercisesJSON, w.LoggedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save workout: %w", err)
	}

	totalGain := result.XPGained + result.MilestoneXP
	_, err = tx.Exec(ctx, `
	UPDATE user_progress
	SET xp = xp + $2,
	    level = $3,
	    level_name = $4,
	    current_streak = $5,
	    total_workouts = total_workouts + 1,
	    last_workout_date = $6,
	    updated_at = NOW()
	WHERE user_id = $1
	`, userID, totalGain, result.NewLevel, result.NewLevelName, result.NewStreak, w.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply workout xp: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit workout: %w", err)
	}

	middleware.RecordXPGrant("workout", result.XPGained)
	if result.MilestoneXP > 0 {
		middleware.RecordXPGrant("streak_milestone", result.MilestoneXP)
	}
	if result.LevelUp {
		log.Printf("SaveWorkout: user %s reached level %d (%s)", userID, result.NewLevel, result.NewLevelName)
	}

	if s.notifications != nil {
		if result.LevelUp {
			go utils.NotifyLevelUp(s.notifications, userID, result.NewLevel, result.NewLevelName)
		}
		if result.MilestoneReached {
			go utils.NotifyStreakMilestone(s.notifications, userID, result.NewStreak, result.MilestoneXP)
		}
	}

	return w, &result, nil
}

// GetWorkout returns one workout owned by the user.
func (s *WorkoutService) GetWorkout(ctx context.Context, userID, workoutID uuid.UUID) (*workout.Workout, error) {
	query := `
	SELECT id, user_id, date, duration_minutes, start_time, exercises, logged_at
	FROM workouts
	WHERE id = $1 AND user_id = $2
	`
	w, err := scanWorkout(s.db.QueryRow(ctx, query, workoutID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("workout not found")
		}
		return nil, fmt.Errorf("failed to get workout: %w", err)
	}
	return w, nil
}

// ListWorkouts returns the user's history, most recent day first.
func (s *WorkoutService) ListWorkouts(ctx context.Context, userID uuid.UUID, limit int) ([]workout.Workout, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
	SELECT id, user_id, date, duration_minutes, start_time, exercises, logged_at
	FROM workouts
	WHERE user_id = $1
	ORDER BY date DESC, logged_at DESC
	LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	defer rows.Close()

	workouts := []workout.Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

// DeleteWorkout removes a session and reconciles the snapshot from what is
// left, since the deleted day may have carried the streak.
func (s *WorkoutService) DeleteWorkout(ctx context.Context, userID, workoutID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2`, workoutID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workout not found")
	}

	if _, err := s.progress.ReconcileProgress(ctx, userID); err != nil {
		// The delete committed; the snapshot will heal on the next reconcile.
		log.Printf("DeleteWorkout: reconcile failed for %s: %v", userID, err)
	}
	return nil
}

// loadWorkoutHistory fetches the full history for the pure calculations.
func loadWorkoutHistory(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) ([]workout.Workout, error) {
	query := `
	SELECT id, user_id, date, duration_minutes, start_time, exercises, logged_at
	FROM workouts
	WHERE user_id = $1
	ORDER BY date DESC
	`
	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workout history: %w", err)
	}
	defer rows.Close()

	workouts := []workout.Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

func scanWorkout(row pgx.Row) (*workout.Workout, error) {
	w := &workout.Workout{}
	var exercisesJSON []byte
	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.Date,
		&w.Duration,
		&w.StartTime,
		&exercisesJSON,
		&w.LoggedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(exercisesJSON) > 0 {
		if err := json.Unmarshal(exercisesJSON, &w.Exercises); err != nil {
			return nil, fmt.Errorf("corrupt exercises payload: %w", err)
		}
	}
	return w, nil
}
