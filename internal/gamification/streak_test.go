package gamification

import (
	"testing"
	"time"

	"fitQuestAPI/internal/types/workout"
)

func onDay(y int, m time.Month, d int) workout.Workout {
	return workout.Workout{Date: time.Date(y, m, d, 12, 0, 0, 0, time.UTC)}
}

func TestRecomputeStreakGraceDay(t *testing.T) {
	// 01-01, 01-02, 01-04, 01-05 with today = 01-05: the single missed day
	// (01-03) is absorbed by the grace rule, so all four sessions chain.
	workouts := []workout.Workout{
		onDay(2024, 1, 1),
		onDay(2024, 1, 2),
		onDay(2024, 1, 4),
		onDay(2024, 1, 5),
	}
	today := time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC)
	if got := RecomputeStreak(workouts, today); got != 4 {
		t.Errorf("streak = %d, want 4", got)
	}
}

func TestRecomputeStreakBrokenByTwoMissedDays(t *testing.T) {
	workouts := []workout.Workout{
		onDay(2024, 1, 1),
		onDay(2024, 1, 2),
		onDay(2024, 1, 5), // 3-day gap from 01-02: chain stops there
	}
	today := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	if got := RecomputeStreak(workouts, today); got != 1 {
		t.Errorf("streak = %d, want 1", got)
	}
}

func TestRecomputeStreakStaleHistory(t *testing.T) {
	workouts := []workout.Workout{
		onDay(2024, 1, 1),
		onDay(2024, 1, 2),
	}
	today := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	if got := RecomputeStreak(workouts, today); got != 0 {
		t.Errorf("streak = %d, want 0 (last session 8 days ago)", got)
	}
}

func TestRecomputeStreakDuplicateDays(t *testing.T) {
	workouts := []workout.Workout{
		onDay(2024, 3, 10),
		onDay(2024, 3, 10), // second session, same day
		onDay(2024, 3, 11),
	}
	today := time.Date(2024, 3, 11, 20, 0, 0, 0, time.UTC)
	if got := RecomputeStreak(workouts, today); got != 2 {
		t.Errorf("streak = %d, want 2", got)
	}
}

func TestRecomputeStreakMixedLocations(t *testing.T) {
	// Stored dates are UTC midnights while today comes from the server's wall
	// clock. The gap must count calendar days, not 24h instants: a session two
	// days back resets the streak no matter the clock's offset.
	workouts := []workout.Workout{
		{Date: time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)},
	}
	today := time.Date(2024, 7, 5, 10, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	if got := RecomputeStreak(workouts, today); got != 0 {
		t.Errorf("streak = %d, want 0 (two calendar days since last session)", got)
	}

	// And a one-day gap still counts as alive under a negative offset.
	today = time.Date(2024, 7, 4, 1, 0, 0, 0, time.FixedZone("UTC-5", -5*60*60))
	if got := RecomputeStreak(workouts, today); got != 1 {
		t.Errorf("streak = %d, want 1 (one calendar day since last session)", got)
	}
}

func TestRecomputeStreakIdempotent(t *testing.T) {
	workouts := []workout.Workout{
		onDay(2024, 6, 1), onDay(2024, 6, 2), onDay(2024, 6, 4),
	}
	today := time.Date(2024, 6, 4, 8, 0, 0, 0, time.UTC)
	first := RecomputeStreak(workouts, today)
	for i := 0; i < 5; i++ {
		if got := RecomputeStreak(workouts, today); got != first {
			t.Fatalf("run %d: streak = %d, want %d", i, got, first)
		}
	}
}

func TestRecomputeStreakEmpty(t *testing.T) {
	if got := RecomputeStreak(nil, time.Now()); got != 0 {
		t.Errorf("streak = %d, want 0", got)
	}
}

func TestAdvanceStreak(t *testing.T) {
	base := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		current int
		last    *time.Time
		next    time.Time
		want    int
	}{
		{"first ever", 0, nil, base, 1},
		{"same day", 3, &base, base.Add(6 * time.Hour), 3},
		{"next day", 3, &base, base.AddDate(0, 0, 1), 4},
		{"grace day", 3, &base, base.AddDate(0, 0, 2), 4},
		{"chain broken", 9, &base, base.AddDate(0, 0, 3), 1},
	}
	for _, tc := range cases {
		if got := AdvanceStreak(tc.current, tc.last, tc.next); got != tc.want {
			t.Errorf("%s: AdvanceStreak = %d, want %d", tc.name, got, tc.want)
		}
	}
}
