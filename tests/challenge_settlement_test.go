package tests

import (
	"context"
	"testing"
	"time"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func createSettlementUser(t *testing.T, db *pgxpool.Pool, username string) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	_, err := db.Exec(context.Background(), `
	INSERT INTO users (id, clerk_id, email, username, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, userID, "test_"+userID.String(), userID.String()+"@test.local", username)
	if err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return userID
}

// An expired challenge settles on first read and stays settled: the second
// read must return the same verdict and reward, and the winner's XP total
// must not move again.
func TestChallengeSettlesExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	progressService := services.NewProgressService(db)
	challengeService := services.NewChallengeService(db, progressService, nil)

	sender := createSettlementUser(t, db, "settle_sender")
	defer db.Exec(ctx, `DELETE FROM users WHERE id = $1`, sender)
	receiver := createSettlementUser(t, db, "settle_receiver")
	defer db.Exec(ctx, `DELETE FROM users WHERE id = $1`, receiver)

	for _, id := range []uuid.UUID{sender, receiver} {
		if _, err := progressService.GetProgress(ctx, id); err != nil {
			t.Fatalf("Failed to seed progress for %s: %v", id, err)
		}
	}

	// Window closed an hour ago; only the sender trained inside it, often
	// enough to clear the bronze threshold for the workouts type.
	start := time.Now().AddDate(0, 0, -7)
	end := time.Now().Add(-time.Hour)
	for i := 1; i <= 3; i++ {
		_, err := db.Exec(ctx, `
		INSERT INTO workouts (id, user_id, date, duration_minutes, exercises, logged_at)
		VALUES ($1, $2, $3, 45, '[]', $3)
		`, uuid.New(), sender, start.AddDate(0, 0, i))
		if err != nil {
			t.Fatalf("Failed to insert workout: %v", err)
		}
	}

	challengeID := uuid.New()
	_, err := db.Exec(ctx, `
	INSERT INTO challenges (id, sender_id, receiver_id, type, target, duration_days,
		start_date, end_date, status, sender_score, receiver_score, created_at, updated_at)
	VALUES ($1, $2, $3, 'workouts', 5, 7, $4, $5, 'accepted', 0, 0, NOW(), NOW())
	`, challengeID, sender, receiver, start, end)
	if err != nil {
		t.Fatalf("Failed to insert challenge: %v", err)
	}

	first, err := challengeService.GetChallenge(ctx, sender, challengeID)
	if err != nil {
		t.Fatalf("First read failed: %v", err)
	}
	if first.Status != challenge.StatusCompleted {
		t.Fatalf("Status after expiry = %s, want completed", first.Status)
	}
	if first.Outcome != challenge.OutcomeVictory {
		t.Fatalf("Outcome for sender = %s, want victory", first.Outcome)
	}
	if first.WinnerID == nil || *first.WinnerID != sender {
		t.Fatalf("WinnerID = %v, want sender %s", first.WinnerID, sender)
	}
	if first.EarnedXP <= 0 {
		t.Fatalf("EarnedXP = %d, want > 0", first.EarnedXP)
	}

	paid, err := progressService.GetProgress(ctx, sender)
	if err != nil {
		t.Fatalf("Failed to read winner progress: %v", err)
	}
	if paid.XP < first.EarnedXP {
		t.Fatalf("Winner XP = %d, want at least the %d reward", paid.XP, first.EarnedXP)
	}

	second, err := challengeService.GetChallenge(ctx, sender, challengeID)
	if err != nil {
		t.Fatalf("Second read failed: %v", err)
	}
	if second.EarnedXP != first.EarnedXP {
		t.Errorf("Second read changed EarnedXP: %d -> %d", first.EarnedXP, second.EarnedXP)
	}
	if second.WinnerID == nil || *second.WinnerID != *first.WinnerID {
		t.Errorf("Second read changed winner: %v -> %v", first.WinnerID, second.WinnerID)
	}
	if first.CompletedAt == nil || second.CompletedAt == nil || !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("Second read changed CompletedAt: %v -> %v", first.CompletedAt, second.CompletedAt)
	}

	after, err := progressService.GetProgress(ctx, sender)
	if err != nil {
		t.Fatalf("Failed to re-read winner progress: %v", err)
	}
	if after.XP != paid.XP {
		t.Errorf("Second settlement pass moved XP: %d -> %d", paid.XP, after.XP)
	}
}
