package gamification

import (
	"sort"
	"time"

	"fitQuestAPI/internal/types/workout"
)

// day truncates a timestamp to its calendar day, anchored in UTC. Stored
// workout dates are UTC midnights while "today" arrives on the server's wall
// clock; anchoring both to the same location keeps day subtraction exact.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole calendar days from a to b (positive when b is
// later). Comparison is day-based, never instant-based.
func daysBetween(a, b time.Time) int {
	da, db := day(a), day(b)
	return int(db.Sub(da).Hours() / 24)
}

// RecomputeStreak derives the current grace-tolerant streak from the full
// workout history. A single missed day does not break the chain; a second
// consecutive miss does. Duplicate same-day sessions count once. The result
// depends only on the inputs, so re-running it always yields the same streak
// — this is the self-heal entry point for out-of-band history edits.
func RecomputeStreak(workouts []workout.Workout, today time.Time) int {
	if len(workouts) == 0 {
		return 0
	}

	dates := make([]time.Time, len(workouts))
	for i, w := range workouts {
		dates[i] = day(w.Date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	// Streak is broken as of today once the most recent session is 2+ days old.
	if daysBetween(dates[0], today) >= 2 {
		return 0
	}

	streak := 1
	for i := 1; i < len(dates); i++ {
		switch daysBetween(dates[i], dates[i-1]) {
		case 0:
			// duplicate session on the same day
			continue
		case 1, 2:
			streak++
		default:
			return streak
		}
	}
	return streak
}

// AdvanceStreak applies one new workout to the stored streak counter using
// the same continuity rule as RecomputeStreak. lastDate is the most recent
// prior workout day, nil for a first-ever workout.
func AdvanceStreak(current int, lastDate *time.Time, newDate time.Time) int {
	if lastDate == nil {
		return 1
	}
	switch daysBetween(*lastDate, newDate) {
	case 0:
		return current
	case 1, 2:
		return current + 1
	default:
		return 1
	}
}
