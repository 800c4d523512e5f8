package gamification

import (
	"testing"

	"fitQuestAPI/internal/types/challenge"
)

func TestTierForVolume(t *testing.T) {
	cases := []struct {
		score float64
		want  Tier
		ok    bool
	}{
		{500, "", false}, // below bronze
		{1000, TierBronze, true},
		{2600, TierSilver, true},
		{7600, TierDiamond, true},
		{10000, TierMaster, true},
		{50000, TierMaster, true},
	}
	for _, tc := range cases {
		got, ok := TierFor(challenge.TypeVolume, tc.score)
		if got != tc.want || ok != tc.ok {
			t.Errorf("TierFor(volume, %v) = (%s, %v), want (%s, %v)", tc.score, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTierForUnknownType(t *testing.T) {
	if _, ok := TierFor(challenge.Type("bogus"), 1e9); ok {
		t.Error("unknown type must not resolve to a tier")
	}
}

func TestTierForExactThreshold(t *testing.T) {
	// Thresholds are inclusive.
	got, ok := TierFor(challenge.TypeWorkouts, 7)
	if !ok || got != TierGold {
		t.Errorf("TierFor(workouts, 7) = (%s, %v), want (gold, true)", got, ok)
	}
}

func TestRewardForScalesWithTier(t *testing.T) {
	low := RewardFor(challenge.TypeVolume, 1000, 7)
	high := RewardFor(challenge.TypeVolume, 7600, 7)
	if low == nil || high == nil {
		t.Fatal("expected rewards for both scores")
	}
	if high.XP <= low.XP {
		t.Errorf("higher tier must pay more: %d (diamond) vs %d (bronze)", high.XP, low.XP)
	}
	// One week: multiplier exactly 1, so bronze pays its base.
	if low.XP != 50 {
		t.Errorf("bronze one-week XP = %d, want 50", low.XP)
	}
	// 550 * 2.2 * 1 = 1210.
	if high.XP != 1210 {
		t.Errorf("diamond one-week XP = %d, want 1210", high.XP)
	}
}

func TestRewardForDurationClamp(t *testing.T) {
	twoWeeks := RewardFor(challenge.TypeWorkouts, 3, 14)
	month := RewardFor(challenge.TypeWorkouts, 3, 30)
	if twoWeeks == nil || month == nil {
		t.Fatal("expected rewards")
	}
	if month.XP != twoWeeks.XP {
		t.Errorf("duration multiplier must clamp at 2: got %d vs %d", month.XP, twoWeeks.XP)
	}
	if month.DurationMultiplier != 2 {
		t.Errorf("DurationMultiplier = %v, want 2", month.DurationMultiplier)
	}
}

func TestRewardForBelowBronze(t *testing.T) {
	if r := RewardFor(challenge.TypeWorkouts, 0.5, 7); r != nil {
		t.Errorf("score below bronze must yield no reward, got %+v", r)
	}
}

func TestTierCatalogMonotonic(t *testing.T) {
	for ct, thresholds := range typeThresholds {
		for i := 1; i < len(thresholds); i++ {
			if thresholds[i] <= thresholds[i-1] {
				t.Errorf("%s: thresholds not strictly increasing at %d", ct, i)
			}
		}
	}
	prevXP, prevMult := 0, 0.0
	for _, tier := range tierOrder {
		info := rewardTiers[tier]
		if info.XPBase <= prevXP || info.Multiplier <= prevMult {
			t.Errorf("%s: reward catalog not strictly increasing", tier)
		}
		prevXP, prevMult = info.XPBase, info.Multiplier
	}
}

func TestEveryTypeHasThresholds(t *testing.T) {
	for _, ct := range challenge.AllTypes {
		if _, ok := typeThresholds[ct]; !ok {
			t.Errorf("missing tier thresholds for %s", ct)
		}
	}
}
