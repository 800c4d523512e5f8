package progress

import "time"

// UserProgress is the persisted gamification snapshot for one user. Level,
// LevelName and Streak are caches of pure derivations: level is revalidated
// from XP on every load, streak is re-derivable from the workout history.
type UserProgress struct {
	XP              int        `json:"xp" db:"xp"`
	Level           int        `json:"level" db:"level"`
	LevelName       string     `json:"level_name" db:"level_name"`
	Progress        float64    `json:"progress"` // percent toward next level, derived
	TotalWorkouts   int        `json:"total_workouts" db:"total_workouts"`
	Streak          int        `json:"streak" db:"current_streak"`
	LastWorkoutDate *time.Time `json:"last_workout_date,omitempty" db:"last_workout_date"`
}

// WorkoutXPResult is what one workout save earned.
type WorkoutXPResult struct {
	XPGained         int    `json:"xp_gained"`
	LevelUp          bool   `json:"level_up"`
	NewLevel         int    `json:"new_level"`
	NewLevelName     string `json:"new_level_name"`
	StreakIncreased  bool   `json:"streak_increased"`
	NewStreak        int    `json:"new_streak"`
	MilestoneReached bool   `json:"milestone_reached"`
	MilestoneXP      int    `json:"milestone_xp"`
}

// XPReason tags a generic (non-workout) XP grant.
type XPReason string

const (
	ReasonBadgeUnlock    XPReason = "badge_unlock"
	ReasonFriendAdd      XPReason = "friend_add"
	ReasonChallengeSend  XPReason = "challenge_send"
	ReasonChallengeWin   XPReason = "challenge_win"
	ReasonDailyLogin     XPReason = "daily_login"
	ReasonWeeklyGoal     XPReason = "weekly_goal"
	ReasonMonthlyGoal    XPReason = "monthly_goal"
	ReasonPersonalRecord XPReason = "personal_record"
)

// Fixed amounts for the flat-rate reasons. Challenge wins are variable and
// carry their own amount.
var ReasonXP = map[XPReason]int{
	ReasonBadgeUnlock:    25,
	ReasonFriendAdd:      15,
	ReasonChallengeSend:  20,
	ReasonDailyLogin:     5,
	ReasonWeeklyGoal:     40,
	ReasonMonthlyGoal:    100,
	ReasonPersonalRecord: 35,
}
