package gamification

import (
	"testing"
	"time"

	"fitQuestAPI/internal/types/workout"
)

func TestUnlockedBadgesFreshUser(t *testing.T) {
	if got := UnlockedBadges(BadgeStats{}); len(got) != 0 {
		t.Errorf("fresh user unlocked %d badges, want 0", len(got))
	}
}

func TestUnlockedBadgesFirstWorkout(t *testing.T) {
	got := UnlockedBadges(BadgeStats{TotalWorkouts: 1})
	if len(got) != 1 || got[0].ID != "first_workout" {
		t.Fatalf("unlocked = %+v, want exactly first_workout", got)
	}
}

func TestUnlockedBadgesStreakLadder(t *testing.T) {
	got := UnlockedBadges(BadgeStats{TotalWorkouts: 7, CurrentStreak: 7})
	ids := make(map[string]bool, len(got))
	for _, b := range got {
		ids[b.ID] = true
	}
	for _, want := range []string{"first_workout", "consistency", "workout_streak"} {
		if !ids[want] {
			t.Errorf("missing badge %s in %v", want, ids)
		}
	}
	if ids["workout_master"] {
		t.Error("workout_master must need 50 workouts")
	}
}

func TestComputeBadgeStatsHours(t *testing.T) {
	early, late := "06:30", "22:15"
	workouts := []workout.Workout{
		{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Duration: 130, StartTime: &early},
		{Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Duration: 40, StartTime: &late},
	}
	today := time.Date(2024, 5, 2, 23, 0, 0, 0, time.UTC)

	stats := ComputeBadgeStats(workouts, nil, 0, 0, today)
	if stats.EarlyWorkouts != 1 {
		t.Errorf("EarlyWorkouts = %d, want 1", stats.EarlyWorkouts)
	}
	if stats.LateWorkouts != 1 {
		t.Errorf("LateWorkouts = %d, want 1", stats.LateWorkouts)
	}
	if stats.LongestWorkout != 130 {
		t.Errorf("LongestWorkout = %d, want 130", stats.LongestWorkout)
	}
	if stats.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", stats.CurrentStreak)
	}
}

func TestBadgeCatalogIDsUnique(t *testing.T) {
	seen := make(map[string]bool, len(Badges))
	for _, b := range Badges {
		if seen[b.ID] {
			t.Errorf("duplicate badge id %s", b.ID)
		}
		seen[b.ID] = true
		if b.condition == nil {
			t.Errorf("badge %s has no condition", b.ID)
		}
	}
}
