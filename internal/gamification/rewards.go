package gamification

import (
	"math"

	"fitQuestAPI/internal/types/challenge"
)

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
	TierMaster   Tier = "master"
)

type tierInfo struct {
	XPBase      int
	Multiplier  float64
	BadgeGlyph  string
	DisplayName string
}

// rewardTiers is constant catalog data: xpBase and multiplier are strictly
// increasing from bronze to master.
var rewardTiers = map[Tier]tierInfo{
	TierBronze:   {XPBase: 50, Multiplier: 1.0, BadgeGlyph: "🥉", DisplayName: "Bronze"},
	TierSilver:   {XPBase: 100, Multiplier: 1.2, BadgeGlyph: "🥈", DisplayName: "Argent"},
	TierGold:     {XPBase: 200, Multiplier: 1.5, BadgeGlyph: "🥇", DisplayName: "Or"},
	TierPlatinum: {XPBase: 350, Multiplier: 1.8, BadgeGlyph: "🏆", DisplayName: "Platine"},
	TierDiamond:  {XPBase: 550, Multiplier: 2.2, BadgeGlyph: "💎", DisplayName: "Diamant"},
	TierMaster:   {XPBase: 800, Multiplier: 3.0, BadgeGlyph: "👑", DisplayName: "Maître"},
}

// tierOrder from lowest to highest.
var tierOrder = []Tier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond, TierMaster}

// typeThresholds holds, per challenge type, the strictly increasing score
// needed for each tier, in tierOrder.
var typeThresholds = map[challenge.Type][6]float64{
	challenge.TypeWorkouts:          {3, 5, 7, 10, 14, 20},
	challenge.TypeDuration:          {90, 180, 300, 450, 600, 900},
	challenge.TypeStreak:            {2, 3, 5, 7, 10, 14},
	challenge.TypeProgression:       {2, 5, 10, 15, 20, 30},
	challenge.TypePersonalRecords:   {5, 10, 20, 35, 50, 75},
	challenge.TypeNewExercises:      {2, 4, 6, 9, 12, 16},
	challenge.TypeWeeklyConsistency: {1, 2, 3, 4, 5, 6},
	challenge.TypeMorningWorkouts:   {1, 2, 3, 5, 7, 10},
	challenge.TypeWeekendWorkouts:   {1, 2, 3, 4, 6, 8},
	challenge.TypeMuscleGroups:      {2, 3, 4, 5, 6, 7},
	challenge.TypeCardioSessions:    {1, 2, 3, 5, 7, 10},
	challenge.TypeStrengthSessions:  {2, 3, 5, 7, 10, 14},
	challenge.TypeLongWorkouts:      {1, 2, 4, 6, 8, 12},
	challenge.TypeIntensity:         {5, 10, 20, 35, 50, 75},
	challenge.TypeVolume:            {1000, 2500, 4500, 6000, 7500, 10000},
}

// Reward is a resolved tier payout for a settled challenge.
type Reward struct {
	Tier               Tier    `json:"tier"`
	XP                 int     `json:"xp"`
	BadgeGlyph         string  `json:"badge_glyph"`
	DisplayName        string  `json:"display_name"`
	DurationMultiplier float64 `json:"duration_multiplier"`
}

// TierFor returns the highest tier whose threshold the score satisfies, or
// ("", false) when the score is below even bronze or the type is unknown.
func TierFor(t challenge.Type, score float64) (Tier, bool) {
	thresholds, ok := typeThresholds[t]
	if !ok {
		return "", false
	}
	for i := len(tierOrder) - 1; i >= 0; i-- {
		if score >= thresholds[i] {
			return tierOrder[i], true
		}
	}
	return "", false
}

// RewardFor converts a final score into a payout. The payout scales with
// challenge length, capped at two weeks' worth: min(durationDays/7, 2).
func RewardFor(t challenge.Type, score float64, durationDays int) *Reward {
	tier, ok := TierFor(t, score)
	if !ok {
		return nil
	}
	info := rewardTiers[tier]
	mult := math.Min(float64(durationDays)/7, 2)
	return &Reward{
		Tier:               tier,
		XP:                 int(math.Round(float64(info.XPBase) * info.Multiplier * mult)),
		BadgeGlyph:         info.BadgeGlyph,
		DisplayName:        info.DisplayName,
		DurationMultiplier: mult,
	}
}
