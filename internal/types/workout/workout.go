package workout

import (
	"time"

	"github.com/google/uuid"
)

// Set is a single performed set. Missing fields are zero and treated as
// "not recorded" by the scoring formulas.
type Set struct {
	Reps     int     `json:"reps"`
	Weight   float64 `json:"weight"`
	Duration int     `json:"duration"` // minutes, for timed sets (planks, cardio intervals)
}

type Exercise struct {
	Name     string `json:"name"`
	Category string `json:"category"` // muscle group, "cardio", or "custom"
	Sets     []Set  `json:"sets"`
}

// Workout is one logged training session. Date is the local calendar day the
// session belongs to; two workouts on the same day never count twice for
// streak purposes.
type Workout struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Date      time.Time  `json:"date" db:"date"`
	Duration  int        `json:"duration" db:"duration_minutes"`
	StartTime *string    `json:"start_time,omitempty" db:"start_time"` // "HH:MM", optional
	Exercises []Exercise `json:"exercises" db:"exercises"`
	LoggedAt  time.Time  `json:"logged_at" db:"logged_at"`
}

// Hour returns the hour of day the session started: the explicit start time
// when one was recorded, otherwise the hour it was logged.
func (w *Workout) Hour() int {
	if w.StartTime != nil && len(*w.StartTime) >= 2 {
		h := 0
		for _, c := range (*w.StartTime)[:2] {
			if c < '0' || c > '9' {
				return w.LoggedAt.Hour()
			}
			h = h*10 + int(c-'0')
		}
		if h >= 0 && h <= 23 {
			return h
		}
	}
	return w.LoggedAt.Hour()
}

type SaveWorkoutRequest struct {
	Date      string     `json:"date" validate:"required,datetime=2006-01-02"`
	Duration  int        `json:"duration" validate:"gte=0"`
	StartTime *string    `json:"start_time,omitempty" validate:"omitempty,len=5"`
	Exercises []Exercise `json:"exercises" validate:"dive"`
}
