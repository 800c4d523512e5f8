// Package gamification is the pure core of the progression system: level
// curve, streak derivation, workout XP, challenge scoring and reward tiers.
// Nothing in here touches the store; everything is deterministic over
// already-fetched snapshots so it can be recomputed speculatively at any time.
package gamification

import "math"

// The XP curve is a compatibility surface: base 100, ratio 1.2. Changing
// either constant retroactively re-levels every existing user.
const (
	xpCurveBase  = 100
	xpCurveRatio = 1.2
)

// levelNames is the fixed 30-entry display table. Levels past the table fall
// back to terminalLevelName.
var levelNames = [...]string{
	"Débutant", "Novice", "Apprenti", "Élève", "Initié",
	"Adepte", "Pratiquant", "Exercé", "Habitué", "Régulier",
	"Sportif", "Athlète", "Compétiteur", "Entraîné", "Aguerri",
	"Expérimenté", "Vétéran", "Expert", "Maître", "Champion",
	"Légende", "Héros", "Titan", "Géant", "Monstre",
	"Phénomène", "Prodige", "Génie", "Virtuose", "Dieu du Sport",
}

const terminalLevelName = "Légende"

// XPRequired returns the total XP needed to hold the given level:
// floor(100 * 1.2^(level-1)).
func XPRequired(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(xpCurveBase * math.Pow(xpCurveRatio, float64(level-1))))
}

// LevelFor returns the largest level whose XP requirement is met. Defined for
// xp >= 0; LevelFor(0) == 1.
func LevelFor(xp int) int {
	level := 1
	for xp >= XPRequired(level+1) {
		level++
	}
	return level
}

// ProgressPercent reports how far into the current level the XP total sits,
// clamped to [0, 100].
func ProgressPercent(xp, level int) float64 {
	current := XPRequired(level)
	next := XPRequired(level + 1)
	pct := float64(xp-current) / float64(next-current) * 100
	return math.Max(0, math.Min(100, pct))
}

// LevelName returns the display name for a level.
func LevelName(level int) string {
	if level >= 1 && level <= len(levelNames) {
		return levelNames[level-1]
	}
	return terminalLevelName
}
