package gamification

import (
	"testing"
	"time"

	"fitQuestAPI/internal/types/progress"
	"fitQuestAPI/internal/types/workout"
)

func perfectWorkout(date time.Time, duration int, exercises ...string) *workout.Workout {
	w := &workout.Workout{Date: date, Duration: duration}
	for _, name := range exercises {
		w.Exercises = append(w.Exercises, workout.Exercise{
			Name: name,
			Sets: []workout.Set{{Reps: 10, Weight: 50}},
		})
	}
	return w
}

func TestCalculateWorkoutXPFullBonuses(t *testing.T) {
	// 60min, 2 exercises, every exercise has sets, previous workout exactly
	// one day earlier: 10 base + 10 duration + 4 exercises + 10 streak + 25
	// perfect = 59.
	date := time.Date(2024, 1, 6, 18, 0, 0, 0, time.UTC)
	w := perfectWorkout(date, 60, "squat", "bench")
	history := []workout.Workout{*perfectWorkout(date.AddDate(0, 0, -1), 30, "squat")}
	prog := &progress.UserProgress{XP: 0, Level: 1, Streak: 1}

	res := CalculateWorkoutXP(w, history, prog)
	if res.XPGained != 59 {
		t.Errorf("XPGained = %d, want 59", res.XPGained)
	}
	if !res.StreakIncreased || res.NewStreak != 2 {
		t.Errorf("streak = %d (increased=%v), want 2", res.NewStreak, res.StreakIncreased)
	}
}

func TestCalculateWorkoutXPFirstWorkout(t *testing.T) {
	// No history: no streak bonus, but the streak seeds at 1 and the first
	// milestone (streak 1, +50) fires.
	date := time.Date(2024, 1, 6, 18, 0, 0, 0, time.UTC)
	w := perfectWorkout(date, 45, "run")
	prog := &progress.UserProgress{XP: 0, Level: 1, Streak: 0}

	res := CalculateWorkoutXP(w, nil, prog)
	// 10 base + 5 duration + 2 exercise + 25 perfect = 42, no streak bonus.
	if res.XPGained != 42 {
		t.Errorf("XPGained = %d, want 42", res.XPGained)
	}
	if !res.MilestoneReached || res.MilestoneXP != 50 {
		t.Errorf("milestone = (%v, %d), want (true, 50)", res.MilestoneReached, res.MilestoneXP)
	}
	if res.NewStreak != 1 {
		t.Errorf("NewStreak = %d, want 1", res.NewStreak)
	}
}

func TestCalculateWorkoutXPNoPerfectWithoutSets(t *testing.T) {
	date := time.Date(2024, 1, 6, 18, 0, 0, 0, time.UTC)
	w := &workout.Workout{
		Date:     date,
		Duration: 20,
		Exercises: []workout.Exercise{
			{Name: "plank", Sets: []workout.Set{{Duration: 60}}},
			{Name: "mystery"}, // no sets at all
		},
	}
	prog := &progress.UserProgress{XP: 0, Level: 1}

	res := CalculateWorkoutXP(w, nil, prog)
	// 10 base + 0 duration + 4 exercises; no perfect bonus.
	if res.XPGained != 14 {
		t.Errorf("XPGained = %d, want 14", res.XPGained)
	}
}

func TestCalculateWorkoutXPDuplicateExerciseNames(t *testing.T) {
	date := time.Date(2024, 1, 6, 18, 0, 0, 0, time.UTC)
	w := perfectWorkout(date, 0, "squat", "squat", "squat")
	prog := &progress.UserProgress{XP: 0, Level: 1}

	res := CalculateWorkoutXP(w, nil, prog)
	// Distinct names only: 10 base + 2 exercise + 25 perfect = 37.
	if res.XPGained != 37 {
		t.Errorf("XPGained = %d, want 37", res.XPGained)
	}
}

func TestCalculateWorkoutXPLevelUp(t *testing.T) {
	date := time.Date(2024, 1, 6, 18, 0, 0, 0, time.UTC)
	w := perfectWorkout(date, 60, "squat", "bench")
	prog := &progress.UserProgress{XP: 100, Level: 1, Streak: 0}

	res := CalculateWorkoutXP(w, nil, prog)
	// 49 gained + 50 milestone on top of 100 XP crosses the 120 XP bar.
	if !res.LevelUp {
		t.Fatalf("expected level up at %d XP", prog.XP+res.XPGained+res.MilestoneXP)
	}
	if res.NewLevel != LevelFor(prog.XP+res.XPGained+res.MilestoneXP) {
		t.Errorf("NewLevel = %d, inconsistent with curve", res.NewLevel)
	}
	if res.NewLevelName != LevelName(res.NewLevel) {
		t.Errorf("NewLevelName = %q", res.NewLevelName)
	}
}

func TestMilestoneXPHighestOnly(t *testing.T) {
	cases := []struct {
		old, new     int
		wantStreak   int
		wantXP       int
	}{
		{0, 1, 1, 50},
		{2, 3, 3, 100},
		{6, 7, 7, 200},
		{5, 8, 7, 200},    // jump across a milestone still fires it
		{5, 15, 14, 300},  // only the highest crossed
		{7, 8, 0, 0},      // nothing newly crossed
		{10, 10, 0, 0},
		{14, 13, 0, 0},    // shrinking streak never fires
	}
	for _, tc := range cases {
		s, xp := MilestoneXP(tc.old, tc.new)
		if s != tc.wantStreak || xp != tc.wantXP {
			t.Errorf("MilestoneXP(%d, %d) = (%d, %d), want (%d, %d)",
				tc.old, tc.new, s, xp, tc.wantStreak, tc.wantXP)
		}
	}
}
