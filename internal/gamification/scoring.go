package gamification

import (
	"fmt"
	"math"
	"sort"
	"time"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/internal/types/workout"
)

// Score computes a challenge score of the given type over the workouts that
// fall inside [start, end]. It is pure and total: missing set fields count as
// zero, an empty range scores 0, and unknown types score 0. It is recomputed
// speculatively for live display, so it must never mutate anything.
func Score(t challenge.Type, workouts []workout.Workout, start, end time.Time) float64 {
	inRange := filterRange(workouts, start, end)
	if len(inRange) == 0 {
		return 0
	}

	switch t {
	case challenge.TypeWorkouts:
		return float64(len(inRange))

	case challenge.TypeDuration:
		total := 0
		for _, w := range inRange {
			total += w.Duration
		}
		return float64(total)

	case challenge.TypeStreak:
		return float64(longestConsecutiveRun(inRange))

	case challenge.TypeProgression:
		return progressionScore(inRange)

	case challenge.TypePersonalRecords:
		records := make(map[string]struct{})
		for _, w := range inRange {
			for _, ex := range w.Exercises {
				for _, s := range ex.Sets {
					key := fmt.Sprintf("%s|%g|%d", ex.Name, s.Weight, s.Reps)
					records[key] = struct{}{}
				}
			}
		}
		return float64(len(records))

	case challenge.TypeNewExercises:
		names := make(map[string]struct{})
		for _, w := range inRange {
			for _, ex := range w.Exercises {
				names[ex.Name] = struct{}{}
			}
		}
		return float64(len(names))

	case challenge.TypeWeeklyConsistency:
		weeks := weeksTouched(start, end)
		if weeks == 0 {
			return 0
		}
		return float64(len(inRange)) / float64(weeks)

	case challenge.TypeMorningWorkouts:
		n := 0
		for _, w := range inRange {
			if w.Hour() < 10 {
				n++
			}
		}
		return float64(n)

	case challenge.TypeWeekendWorkouts:
		n := 0
		for _, w := range inRange {
			wd := w.Date.Weekday()
			if wd == time.Saturday || wd == time.Sunday {
				n++
			}
		}
		return float64(n)

	case challenge.TypeMuscleGroups:
		groups := make(map[string]struct{})
		for _, w := range inRange {
			for _, ex := range w.Exercises {
				if ex.Category != "" && ex.Category != "custom" {
					groups[ex.Category] = struct{}{}
				}
			}
		}
		return float64(len(groups))

	case challenge.TypeCardioSessions:
		n := 0
		for _, w := range inRange {
			if hasCategory(&w, func(c string) bool { return c == "cardio" }) {
				n++
			}
		}
		return float64(n)

	case challenge.TypeStrengthSessions:
		n := 0
		for _, w := range inRange {
			if hasCategory(&w, func(c string) bool { return c != "" && c != "cardio" && c != "custom" }) {
				n++
			}
		}
		return float64(n)

	case challenge.TypeLongWorkouts:
		n := 0
		for _, w := range inRange {
			if w.Duration > 45 {
				n++
			}
		}
		return float64(n)

	case challenge.TypeIntensity:
		return intensityScore(inRange)

	case challenge.TypeVolume:
		total := 0.0
		for _, w := range inRange {
			for _, ex := range w.Exercises {
				for _, s := range ex.Sets {
					total += s.Weight * float64(s.Reps)
				}
			}
		}
		return total

	default:
		return 0
	}
}

func filterRange(workouts []workout.Workout, start, end time.Time) []workout.Workout {
	s, e := day(start), day(end)
	var out []workout.Workout
	for _, w := range workouts {
		d := day(w.Date)
		if !d.Before(s) && !d.After(e) {
			out = append(out, w)
		}
	}
	return out
}

// longestConsecutiveRun finds the longest strictly consecutive-day run of
// distinct workout dates. No grace day here: this is a different contract
// from the per-user streak and the two must not be unified, since loosening
// it would change challenge outcomes.
func longestConsecutiveRun(workouts []workout.Workout) int {
	seen := make(map[time.Time]struct{}, len(workouts))
	for _, w := range workouts {
		seen[day(w.Date)] = struct{}{}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	best, run := 0, 0
	for i, d := range dates {
		if i > 0 && daysBetween(dates[i-1], d) == 1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// progressionScore averages, across exercises with at least two weighted
// sets in range, the percent change from the first to the last recorded
// weight in chronological order.
func progressionScore(workouts []workout.Workout) float64 {
	sorted := make([]workout.Workout, len(workouts))
	copy(sorted, workouts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	type span struct {
		first, last float64
		count       int
	}
	byExercise := make(map[string]*span)
	for _, w := range sorted {
		for _, ex := range w.Exercises {
			for _, s := range ex.Sets {
				if s.Weight <= 0 {
					continue
				}
				sp, ok := byExercise[ex.Name]
				if !ok {
					sp = &span{first: s.Weight}
					byExercise[ex.Name] = sp
				}
				sp.last = s.Weight
				sp.count++
			}
		}
	}

	sum, n := 0.0, 0
	for _, sp := range byExercise {
		if sp.count < 2 || sp.first == 0 {
			continue
		}
		sum += (sp.last - sp.first) / sp.first * 100
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// intensityScore averages over workouts the mean per-set normalized
// intensity weight*reps/100. Workouts without sets contribute 0.
func intensityScore(workouts []workout.Workout) float64 {
	total := 0.0
	for _, w := range workouts {
		setSum, sets := 0.0, 0
		for _, ex := range w.Exercises {
			for _, s := range ex.Sets {
				setSum += s.Weight * float64(s.Reps) / 100
				sets++
			}
		}
		if sets > 0 {
			total += setSum / float64(sets)
		}
	}
	return total / float64(len(workouts))
}

func hasCategory(w *workout.Workout, match func(string) bool) bool {
	for _, ex := range w.Exercises {
		if match(ex.Category) {
			return true
		}
	}
	return false
}

// weeksTouched counts the Monday-start calendar weeks the range overlaps.
func weeksTouched(start, end time.Time) int {
	s, e := weekStart(start), weekStart(end)
	if e.Before(s) {
		return 0
	}
	return int(math.Round(e.Sub(s).Hours()/(24*7))) + 1
}

func weekStart(t time.Time) time.Time {
	d := day(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday == 0
	return d.AddDate(0, 0, -offset)
}
