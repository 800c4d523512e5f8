package challenge

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeWorkouts          Type = "workouts"
	TypeDuration          Type = "duration"
	TypeStreak            Type = "streak"
	TypeProgression       Type = "progression"
	TypePersonalRecords   Type = "personal_records"
	TypeNewExercises      Type = "new_exercises"
	TypeWeeklyConsistency Type = "weekly_consistency"
	TypeMorningWorkouts   Type = "morning_workouts"
	TypeWeekendWorkouts   Type = "weekend_workouts"
	TypeMuscleGroups      Type = "muscle_groups"
	TypeCardioSessions    Type = "cardio_sessions"
	TypeStrengthSessions  Type = "strength_sessions"
	TypeLongWorkouts      Type = "long_workouts"
	TypeIntensity         Type = "intensity"
	TypeVolume            Type = "volume"
)

// AllTypes lists the catalog in display order.
var AllTypes = []Type{
	TypeWorkouts, TypeDuration, TypeStreak, TypeProgression,
	TypePersonalRecords, TypeNewExercises, TypeWeeklyConsistency,
	TypeMorningWorkouts, TypeWeekendWorkouts, TypeMuscleGroups,
	TypeCardioSessions, TypeStrengthSessions, TypeLongWorkouts,
	TypeIntensity, TypeVolume,
}

func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

type Outcome string

const (
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeTie     Outcome = "tie"
	OutcomeActive  Outcome = "active"
)

// Challenge is a time-boxed two-player competition. EndDate is immutable once
// set; status only moves forward; the reward fields are written at most once,
// on the first transition into completed.
type Challenge struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	SenderID      uuid.UUID  `json:"sender_id" db:"sender_id"`
	ReceiverID    uuid.UUID  `json:"receiver_id" db:"receiver_id"`
	Type          Type       `json:"type" db:"type"`
	Target        float64    `json:"target" db:"target"`
	DurationDays  int        `json:"duration" db:"duration_days"`
	StartDate     time.Time  `json:"start_date" db:"start_date"`
	EndDate       time.Time  `json:"end_date" db:"end_date"`
	Status        Status     `json:"status" db:"status"`
	SenderScore   float64    `json:"sender_score" db:"sender_score"`
	ReceiverScore float64    `json:"receiver_score" db:"receiver_score"`
	WinnerID      *uuid.UUID `json:"winner_id,omitempty" db:"winner_id"`
	AchievedTier  *string    `json:"achieved_tier,omitempty" db:"achieved_tier"`
	EarnedXP      int        `json:"earned_xp" db:"earned_xp"`
	EarnedBadge   *string    `json:"earned_badge,omitempty" db:"earned_badge"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// ScoreFor returns the stored score of the given participant.
func (c *Challenge) ScoreFor(userID uuid.UUID) float64 {
	if userID == c.SenderID {
		return c.SenderScore
	}
	return c.ReceiverScore
}

// View is a challenge as seen by one participant: scores re-keyed to
// my/friend, plus the outcome for display.
type View struct {
	Challenge
	MyScore     float64 `json:"my_score"`
	FriendScore float64 `json:"friend_score"`
	Outcome     Outcome `json:"outcome"`
}

type CreateChallengeRequest struct {
	FriendClerkID string  `json:"friend_clerk_id" validate:"required"`
	Type          Type    `json:"type" validate:"required"`
	Target        float64 `json:"target" validate:"gt=0"`
	Duration      int     `json:"duration" validate:"gte=1,lte=90"`
}
