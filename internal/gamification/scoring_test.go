package gamification

import (
	"testing"
	"time"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/internal/types/workout"
)

var (
	rangeStart = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC) // a Monday
	rangeEnd   = time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC)
)

func scoringWorkout(d int, duration int, startTime string, exercises ...workout.Exercise) workout.Workout {
	date := time.Date(2024, 4, d, 12, 0, 0, 0, time.UTC)
	var st *string
	if startTime != "" {
		st = &startTime
	}
	return workout.Workout{Date: date, Duration: duration, StartTime: st, Exercises: exercises}
}

func ex(name, category string, sets ...workout.Set) workout.Exercise {
	return workout.Exercise{Name: name, Category: category, Sets: sets}
}

func TestScoreEmptyRange(t *testing.T) {
	for _, ct := range challenge.AllTypes {
		if got := Score(ct, nil, rangeStart, rangeEnd); got != 0 {
			t.Errorf("Score(%s, empty) = %v, want 0", ct, got)
		}
	}
}

func TestScoreUnknownType(t *testing.T) {
	workouts := []workout.Workout{scoringWorkout(2, 60, "")}
	if got := Score(challenge.Type("bogus"), workouts, rangeStart, rangeEnd); got != 0 {
		t.Errorf("Score(bogus) = %v, want 0", got)
	}
}

func TestScoreIgnoresOutOfRange(t *testing.T) {
	workouts := []workout.Workout{
		scoringWorkout(2, 60, ""),
		{Date: time.Date(2024, 3, 30, 12, 0, 0, 0, time.UTC), Duration: 60},
		{Date: time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC), Duration: 60},
	}
	if got := Score(challenge.TypeWorkouts, workouts, rangeStart, rangeEnd); got != 1 {
		t.Errorf("workouts = %v, want 1", got)
	}
}

func TestScoreCounts(t *testing.T) {
	strength := ex("squat", "legs", workout.Set{Reps: 10, Weight: 80})
	cardio := ex("run", "cardio", workout.Set{Duration: 1200})
	workouts := []workout.Workout{
		scoringWorkout(1, 60, "07:30", strength),        // Monday, morning, long
		scoringWorkout(6, 30, "18:00", cardio),          // Saturday
		scoringWorkout(7, 50, "09:00", strength, cardio), // Sunday, morning, long
	}

	cases := []struct {
		ct   challenge.Type
		want float64
	}{
		{challenge.TypeWorkouts, 3},
		{challenge.TypeDuration, 140},
		{challenge.TypeMorningWorkouts, 2},
		{challenge.TypeWeekendWorkouts, 2},
		{challenge.TypeCardioSessions, 2},
		{challenge.TypeStrengthSessions, 2},
		{challenge.TypeLongWorkouts, 2},
		{challenge.TypeNewExercises, 2},
		{challenge.TypeMuscleGroups, 2},
	}
	for _, tc := range cases {
		if got := Score(tc.ct, workouts, rangeStart, rangeEnd); got != tc.want {
			t.Errorf("Score(%s) = %v, want %v", tc.ct, got, tc.want)
		}
	}
}

func TestScoreStreakIsStrict(t *testing.T) {
	// Days 1, 2, 4, 5: unlike the per-user streak there is no grace day, so
	// the longest run is 2, not 4.
	workouts := []workout.Workout{
		scoringWorkout(1, 30, ""),
		scoringWorkout(2, 30, ""),
		scoringWorkout(4, 30, ""),
		scoringWorkout(5, 30, ""),
	}
	if got := Score(challenge.TypeStreak, workouts, rangeStart, rangeEnd); got != 2 {
		t.Errorf("streak score = %v, want 2", got)
	}
}

func TestScoreVolume(t *testing.T) {
	workouts := []workout.Workout{
		scoringWorkout(2, 60, "",
			ex("squat", "legs", workout.Set{Reps: 10, Weight: 100}, workout.Set{Reps: 8, Weight: 110}),
			ex("plank", "core", workout.Set{Duration: 60}), // no weight, contributes 0
		),
	}
	// 10*100 + 8*110 = 1880
	if got := Score(challenge.TypeVolume, workouts, rangeStart, rangeEnd); got != 1880 {
		t.Errorf("volume = %v, want 1880", got)
	}
}

func TestScoreProgression(t *testing.T) {
	workouts := []workout.Workout{
		scoringWorkout(1, 60, "", ex("squat", "legs", workout.Set{Reps: 10, Weight: 100})),
		scoringWorkout(5, 60, "", ex("squat", "legs", workout.Set{Reps: 10, Weight: 110})),
		scoringWorkout(6, 60, "", ex("curl", "arms", workout.Set{Reps: 12, Weight: 20})), // single sample, skipped
	}
	if got := Score(challenge.TypeProgression, workouts, rangeStart, rangeEnd); got != 10 {
		t.Errorf("progression = %v, want 10 (100 -> 110 on squat)", got)
	}
}

func TestScorePersonalRecords(t *testing.T) {
	workouts := []workout.Workout{
		scoringWorkout(1, 60, "",
			ex("squat", "legs", workout.Set{Reps: 10, Weight: 100}, workout.Set{Reps: 10, Weight: 100})),
		scoringWorkout(3, 60, "",
			ex("squat", "legs", workout.Set{Reps: 8, Weight: 100})),
	}
	// (squat, 100, 10) and (squat, 100, 8): duplicates collapse.
	if got := Score(challenge.TypePersonalRecords, workouts, rangeStart, rangeEnd); got != 2 {
		t.Errorf("personal_records = %v, want 2", got)
	}
}

func TestScoreWeeklyConsistency(t *testing.T) {
	// Two Monday-start weeks in range, 4 workouts: 4 / 2 = 2.
	workouts := []workout.Workout{
		scoringWorkout(1, 30, ""),
		scoringWorkout(3, 30, ""),
		scoringWorkout(9, 30, ""),
		scoringWorkout(12, 30, ""),
	}
	if got := Score(challenge.TypeWeeklyConsistency, workouts, rangeStart, rangeEnd); got != 2 {
		t.Errorf("weekly_consistency = %v, want 2", got)
	}
}

func TestScoreIntensity(t *testing.T) {
	workouts := []workout.Workout{
		scoringWorkout(2, 60, "",
			ex("bench", "chest",
				workout.Set{Reps: 10, Weight: 100}, // 1000/100 = 10
				workout.Set{Reps: 10, Weight: 50},  // 500/100 = 5
			),
		),
	}
	// Single workout, mean per-set intensity (10+5)/2 = 7.5.
	if got := Score(challenge.TypeIntensity, workouts, rangeStart, rangeEnd); got != 7.5 {
		t.Errorf("intensity = %v, want 7.5", got)
	}
}

func TestScoreMuscleGroupsExcludesCustom(t *testing.T) {
	workouts := []workout.Workout{
		scoringWorkout(2, 60, "",
			ex("squat", "legs"),
			ex("thing", "custom"),
			ex("other", ""),
		),
	}
	if got := Score(challenge.TypeMuscleGroups, workouts, rangeStart, rangeEnd); got != 1 {
		t.Errorf("muscle_groups = %v, want 1", got)
	}
}
