package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	fcm "fitQuestAPI/internal/notification"
	"fitQuestAPI/internal/types/notification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationService struct {
	db  *pgxpool.Pool
	fcm *fcm.FCMService
}

// NewNotificationService wires persistence and push. fcmService may be nil
// when push credentials are absent; notifications are then stored only.
func NewNotificationService(db *pgxpool.Pool, fcmService *fcm.FCMService) *NotificationService {
	return &NotificationService{db: db, fcm: fcmService}
}

func (s *NotificationService) RegisterDeviceToken(ctx context.Context, userID uuid.UUID, req *notification.RegisterTokenRequest) error {
	platform := req.Platform
	if platform == "" {
		platform = "android"
	}
	_, err := s.db.Exec(ctx, `
	INSERT INTO device_tokens (user_id, token, platform, created_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (token) DO UPDATE SET user_id = $1, platform = $3
	`, userID, req.Token, platform)
	if err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	return nil
}

// CreateNotification stores the notification and pushes it to the user's
// devices. Push failure never fails the create: the in-app feed is the
// source of truth.
func (s *NotificationService) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	n := &notification.Notification{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Data:      req.Data,
		CreatedAt: time.Now(),
	}

	dataJSON, err := json.Marshal(n.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification data: %w", err)
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO notifications (id, user_id, type, title, message, is_read, data, created_at)
	VALUES ($1, $2, $3, $4, $5, false, $6, $7)
	`, n.ID, n.UserID, n.Type, n.Title, n.Message, dataJSON, n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if s.fcm != nil {
		tokens, err := s.tokensFor(ctx, n.UserID)
		if err != nil {
			log.Printf("CreateNotification: token lookup failed for %s: %v", n.UserID, err)
		} else if err := s.fcm.SendPush(ctx, tokens, n.Title, n.Message, n.Data); err != nil {
			log.Printf("CreateNotification: push failed for %s: %v", n.UserID, err)
		}
	}

	return n, nil
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, type, title, message, is_read, data, created_at
	FROM notifications
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []notification.Notification{}
	for rows.Next() {
		n := notification.Notification{}
		var dataJSON []byte
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &dataJSON, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
				log.Printf("ListNotifications: corrupt data payload on %s: %v", n.ID, err)
			}
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
	UPDATE notifications SET is_read = true
	WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *NotificationService) tokensFor(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx,
		`SELECT token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []notification.DeviceToken{}
	for rows.Next() {
		t := notification.DeviceToken{}
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
