package gamification

import (
	"sort"

	"fitQuestAPI/internal/types/progress"
	"fitQuestAPI/internal/types/workout"
)

const (
	workoutBaseXP     = 10
	durationBonusStep = 30 // minutes per bonus increment
	durationBonusXP   = 5
	exerciseBonusXP   = 2
	streakBonusXP     = 10
	perfectWorkoutXP  = 25
)

// streakMilestones maps streak lengths to one-time bonus XP. Only the highest
// newly-crossed threshold fires when the streak grows.
var streakMilestones = []struct {
	Streak int
	XP     int
}{
	{1, 50}, {3, 100}, {7, 200}, {14, 300},
	{21, 500}, {30, 1000}, {50, 2000}, {100, 5000},
}

// MilestoneXP returns the bonus for the highest milestone crossed when the
// streak moved from oldStreak to newStreak, or (0, 0) if none was.
func MilestoneXP(oldStreak, newStreak int) (streak, xp int) {
	for i := len(streakMilestones) - 1; i >= 0; i-- {
		m := streakMilestones[i]
		if oldStreak < m.Streak && newStreak >= m.Streak {
			return m.Streak, m.XP
		}
	}
	return 0, 0
}

// CalculateWorkoutXP converts one new workout plus the prior state into an XP
// delta and the advanced streak. history must be the user's prior workouts;
// only the most recent one matters for the streak bonus.
//
// The milestone bonus is reported separately from XPGained: callers apply it
// as a second grant so it is never double-counted.
func CalculateWorkoutXP(w *workout.Workout, history []workout.Workout, prog *progress.UserProgress) progress.WorkoutXPResult {
	xp := workoutBaseXP
	xp += (w.Duration / durationBonusStep) * durationBonusXP

	distinct := make(map[string]struct{}, len(w.Exercises))
	for _, ex := range w.Exercises {
		distinct[ex.Name] = struct{}{}
	}
	xp += len(distinct) * exerciseBonusXP

	prev := mostRecent(history)
	if prev != nil && daysBetween(prev.Date, w.Date) == 1 {
		xp += streakBonusXP
	}

	if isPerfect(w) {
		xp += perfectWorkoutXP
	}

	oldStreak := prog.Streak
	var newStreak int
	if prev == nil {
		newStreak = AdvanceStreak(oldStreak, nil, w.Date)
	} else {
		d := day(prev.Date)
		newStreak = AdvanceStreak(oldStreak, &d, w.Date)
	}

	res := progress.WorkoutXPResult{
		XPGained:        xp,
		NewStreak:       newStreak,
		StreakIncreased: newStreak > oldStreak,
	}

	if res.StreakIncreased {
		if _, bonus := MilestoneXP(oldStreak, newStreak); bonus > 0 {
			res.MilestoneReached = true
			res.MilestoneXP = bonus
		}
	}

	newXP := prog.XP + res.XPGained + res.MilestoneXP
	res.NewLevel = LevelFor(newXP)
	res.NewLevelName = LevelName(res.NewLevel)
	res.LevelUp = res.NewLevel > prog.Level

	return res
}

// isPerfect reports whether every exercise has at least one meaningful set.
// A workout with no exercises is not perfect.
func isPerfect(w *workout.Workout) bool {
	if len(w.Exercises) == 0 {
		return false
	}
	for _, ex := range w.Exercises {
		ok := false
		for _, s := range ex.Sets {
			if s.Reps > 0 || s.Weight > 0 || s.Duration > 0 {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// mostRecent returns the latest-dated workout in history, or nil.
func mostRecent(history []workout.Workout) *workout.Workout {
	if len(history) == 0 {
		return nil
	}
	sorted := make([]workout.Workout, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	return &sorted[0]
}
