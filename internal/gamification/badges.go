package gamification

import (
	"time"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/internal/types/workout"
)

// BadgeStats are the aggregates the badge conditions are written against.
type BadgeStats struct {
	TotalWorkouts   int
	CurrentStreak   int
	LongestWorkout  int
	EarlyWorkouts   int // before 07:00
	LateWorkouts    int // 22:00 or later
	TotalChallenges int
	ChallengeWins   int
	TotalFriends    int
}

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	condition func(BadgeStats) bool
}

func (b Badge) Unlocked(stats BadgeStats) bool { return b.condition(stats) }

// Badges is the fixed catalog. Order matters for display only; unlocks are
// persisted once and grant the flat badge XP through the generic grant path.
var Badges = []Badge{
	{"first_workout", "Premier Pas", "Complète ta première séance", "🎯",
		func(s BadgeStats) bool { return s.TotalWorkouts >= 1 }},
	{"consistency", "Régularité", "Séances 3 jours de suite", "📅",
		func(s BadgeStats) bool { return s.CurrentStreak >= 3 }},
	{"workout_streak", "Série de Feu", "7 séances consécutives", "🔥",
		func(s BadgeStats) bool { return s.CurrentStreak >= 7 }},
	{"workout_master", "Maître de l'Entraînement", "50 séances complétées", "💪",
		func(s BadgeStats) bool { return s.TotalWorkouts >= 50 }},
	{"workout_legend", "Légende du Fitness", "100 séances complétées", "👑",
		func(s BadgeStats) bool { return s.TotalWorkouts >= 100 }},
	{"long_workout", "Marathonien", "Séance de plus de 2h", "🏃",
		func(s BadgeStats) bool { return s.LongestWorkout >= 120 }},
	{"early_bird", "Lève-tôt", "Séance avant 7h du matin", "🌅",
		func(s BadgeStats) bool { return s.EarlyWorkouts >= 1 }},
	{"night_owl", "Oiseau de Nuit", "Séance après 22h", "🦉",
		func(s BadgeStats) bool { return s.LateWorkouts >= 1 }},
	{"first_challenge", "Défieur Débutant", "Participe à ton premier défi", "⚔️",
		func(s BadgeStats) bool { return s.TotalChallenges >= 1 }},
	{"team_player", "Joueur d'Équipe", "Participe à 5 défis", "🤝",
		func(s BadgeStats) bool { return s.TotalChallenges >= 5 }},
	{"challenge_winner", "Vainqueur", "Gagne ton premier défi", "🏆",
		func(s BadgeStats) bool { return s.ChallengeWins >= 1 }},
	{"challenge_master", "Maître des Défis", "Gagne 10 défis", "👑",
		func(s BadgeStats) bool { return s.ChallengeWins >= 10 }},
	{"social_butterfly", "Papillon Social", "Ajoute 5 amis", "🦋",
		func(s BadgeStats) bool { return s.TotalFriends >= 5 }},
}

// UnlockedBadges returns every badge the stats satisfy.
func UnlockedBadges(stats BadgeStats) []Badge {
	var out []Badge
	for _, b := range Badges {
		if b.Unlocked(stats) {
			out = append(out, b)
		}
	}
	return out
}

// ComputeBadgeStats derives the badge aggregates from raw history.
func ComputeBadgeStats(workouts []workout.Workout, challenges []challenge.Challenge, userWins int, friends int, today time.Time) BadgeStats {
	stats := BadgeStats{
		TotalWorkouts:   len(workouts),
		TotalChallenges: len(challenges),
		ChallengeWins:   userWins,
		TotalFriends:    friends,
		CurrentStreak:   RecomputeStreak(workouts, today),
	}
	for _, w := range workouts {
		if w.Duration > stats.LongestWorkout {
			stats.LongestWorkout = w.Duration
		}
		h := w.Hour()
		if h < 7 {
			stats.EarlyWorkouts++
		}
		if h >= 22 {
			stats.LateWorkouts++
		}
	}
	return stats
}
