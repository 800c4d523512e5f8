package gamification

import "testing"

func TestXPRequiredCurve(t *testing.T) {
	// The curve is a compatibility contract: floor(100 * 1.2^(n-1)).
	cases := map[int]int{1: 100, 2: 120, 3: 144, 4: 172, 5: 207, 10: 515}
	for level, want := range cases {
		if got := XPRequired(level); got != want {
			t.Errorf("XPRequired(%d) = %d, want %d", level, got, want)
		}
	}
}

func TestLevelForRoundTrip(t *testing.T) {
	for n := 1; n <= 40; n++ {
		if got := LevelFor(XPRequired(n)); got != n {
			t.Errorf("LevelFor(XPRequired(%d)) = %d, want %d", n, got, n)
		}
	}
}

func TestLevelForMonotonic(t *testing.T) {
	if LevelFor(0) != 1 {
		t.Fatalf("LevelFor(0) = %d, want 1", LevelFor(0))
	}
	prev := 1
	for xp := 0; xp <= 5000; xp += 7 {
		level := LevelFor(xp)
		if level < prev {
			t.Fatalf("LevelFor decreased at xp=%d: %d -> %d", xp, prev, level)
		}
		prev = level
	}
}

func TestProgressPercentClamped(t *testing.T) {
	if pct := ProgressPercent(0, 1); pct != 0 {
		t.Errorf("ProgressPercent(0, 1) = %v, want 0", pct)
	}
	if pct := ProgressPercent(100, 1); pct != 0 {
		t.Errorf("ProgressPercent(100, 1) = %v, want 0", pct)
	}
	if pct := ProgressPercent(110, 1); pct != 50 {
		t.Errorf("ProgressPercent(110, 1) = %v, want 50", pct)
	}
	if pct := ProgressPercent(10000, 1); pct != 100 {
		t.Errorf("ProgressPercent(10000, 1) = %v, want 100 (clamped)", pct)
	}
}

func TestLevelNames(t *testing.T) {
	if got := LevelName(1); got != "Débutant" {
		t.Errorf("LevelName(1) = %q", got)
	}
	if got := LevelName(30); got != "Dieu du Sport" {
		t.Errorf("LevelName(30) = %q", got)
	}
	if got := LevelName(31); got != "Légende" {
		t.Errorf("LevelName(31) = %q, want terminal name", got)
	}
	if got := LevelName(999); got != "Légende" {
		t.Errorf("LevelName(999) = %q, want terminal name", got)
	}
}
