package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeChallengeReceived Type = "challenge_received"
	TypeChallengeAnswered Type = "challenge_answered"
	TypeChallengeSettled  Type = "challenge_settled"
	TypeLevelUp           Type = "level_up"
	TypeBadgeUnlocked     Type = "badge_unlocked"
	TypeStreakMilestone   Type = "streak_milestone"
	TypeFriendAdded       Type = "friend_added"
)

type Notification struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Type      Type           `json:"type" db:"type"`
	Title     string         `json:"title" db:"title"`
	Message   string         `json:"message" db:"message"`
	IsRead    bool           `json:"is_read" db:"is_read"`
	Data      map[string]any `json:"data" db:"data"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

type CreateNotificationRequest struct {
	UserID  uuid.UUID      `json:"user_id"`
	Type    Type           `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// DeviceToken is one registered push target for a user.
type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"` // "android" or "ios"
}

type RegisterTokenRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"omitempty,oneof=android ios"`
}
