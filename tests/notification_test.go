package tests

import (
	"context"
	"log"
	"os"
	"testing"

	"fitQuestAPI/internal/types/notification"
	"fitQuestAPI/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	if err := godotenv.Load("../.env"); err != nil {
		_ = godotenv.Load()
		log.Println("Warning: .env file not found via godotenv")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestNotificationFlow(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := services.NewNotificationService(db, nil)
	ctx := context.Background()

	// Needs a real user row; create a throwaway one.
	userID := uuid.New()
	_, err := db.Exec(ctx, `
	INSERT INTO users (id, clerk_id, email, username, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, userID, "test_"+userID.String(), userID.String()+"@test.local", "notif_test_user")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	defer db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)

	req := &notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypeStreakMilestone,
		Title:   "Série en feu !",
		Message: "7 jours d'affilée",
		Data:    map[string]any{"streak": 7},
	}

	notif, err := svc.CreateNotification(ctx, req)
	if err != nil {
		t.Fatalf("Failed to create notification: %v", err)
	}
	t.Logf("Created Notification ID: %s", notif.ID)

	listed, err := svc.ListNotifications(ctx, userID, 10)
	if err != nil {
		t.Fatalf("Failed to list notifications: %v", err)
	}
	if len(listed) == 0 || listed[0].ID != notif.ID {
		t.Fatalf("Created notification not found in list")
	}
	if listed[0].IsRead {
		t.Error("New notification must start unread")
	}

	if err := svc.MarkRead(ctx, userID, notif.ID); err != nil {
		t.Fatalf("Failed to mark as read: %v", err)
	}

	listed, err = svc.ListNotifications(ctx, userID, 10)
	if err != nil {
		t.Fatalf("Failed to list notifications: %v", err)
	}
	if !listed[0].IsRead {
		t.Error("Notification should be read after MarkRead")
	}
}
