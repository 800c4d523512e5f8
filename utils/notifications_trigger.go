package utils

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"fitQuestAPI/internal/types/notification"
)

// NotificationCreator is the one method the triggers need; it keeps the
// service package out of here.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error)
}

// NotifyChallengeReceived tells the receiver a friend challenged them.
// Triggers run fire-and-forget off the request path.
func NotifyChallengeReceived(notifier NotificationCreator, receiverID uuid.UUID, senderName string, challengeType string) {
	bgCtx := context.Background()
	req := &notification.CreateNotificationRequest{
		UserID:  receiverID,
		Type:    notification.TypeChallengeReceived,
		Title:   "Nouveau défi !",
		Message: fmt.Sprintf("%s te lance un défi %s", senderName, challengeType),
		Data: map[string]any{
			"sender":         senderName,
			"challenge_type": challengeType,
		},
	}
	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create challenge-received notification for %s: %v", receiverID, err)
	}
}

// NotifyChallengeAnswered tells the sender their invitation was answered.
func NotifyChallengeAnswered(notifier NotificationCreator, senderID uuid.UUID, receiverName string, accepted bool) {
	bgCtx := context.Background()
	message := fmt.Sprintf("%s a refusé ton défi", receiverName)
	if accepted {
		message = fmt.Sprintf("%s a accepté ton défi. C'est parti !", receiverName)
	}
	req := &notification.CreateNotificationRequest{
		UserID:  senderID,
		Type:    notification.TypeChallengeAnswered,
		Title:   "Défi répondu",
		Message: message,
		Data: map[string]any{
			"receiver": receiverName,
			"accepted": accepted,
		},
	}
	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create challenge-answered notification for %s: %v", senderID, err)
	}
}

// NotifyChallengeSettled tells a participant how their challenge ended.
func NotifyChallengeSettled(notifier NotificationCreator, userID uuid.UUID, won bool, earnedXP int) {
	bgCtx := context.Background()
	title := "Défi terminé"
	message := "Ton défi est terminé. Pas de victoire cette fois."
	if won {
		title = "Victoire !"
		message = fmt.Sprintf("Tu as gagné ton défi et remporté %d XP !", earnedXP)
	}
	req := &notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypeChallengeSettled,
		Title:   title,
		Message: message,
		Data: map[string]any{
			"won":       won,
			"earned_xp": earnedXP,
		},
	}
	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create challenge-settled notification for %s: %v", userID, err)
	}
}

// NotifyLevelUp celebrates a crossed level boundary.
func NotifyLevelUp(notifier NotificationCreator, userID uuid.UUID, newLevel int, levelName string) {
	bgCtx := context.Background()
	req := &notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypeLevelUp,
		Title:   "Niveau supérieur !",
		Message: fmt.Sprintf("Tu es maintenant niveau %d : %s", newLevel, levelName),
		Data: map[string]any{
			"level":      newLevel,
			"level_name": levelName,
		},
	}
	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create level-up notification for %s: %v", userID, err)
	}
}

// NotifyFriendAdded tells a user someone added them.
func NotifyFriendAdded(notifier NotificationCreator, userID uuid.UUID, friendName string) {
	bgCtx := context.Background()
	req := &notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypeFriendAdded,
		Title:   "Nouvel ami",
		Message: fmt.Sprintf("%s t'a ajouté en ami", friendName),
		Data: map[string]any{
			"friend": friendName,
		},
	}
	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create friend-added notification for %s: %v", userID, err)
	}
}

// NotifyBadgeUnlocked celebrates a newly earned badge.
func NotifyBadgeUnlocked(notifier NotificationCreator, userID uuid.UUID, badgeName, badgeIcon string) {
	bgCtx := context.Background()
	req := &notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypeBadgeUnlocked,
		Title:   "Badge débloqué !",
		Message: fmt.Sprintf("%s Tu as débloqué « %s »", badgeIcon, badgeName),
		Data: map[string]any{
			"badge": badgeName,
		},
	}
	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create badge-unlocked notification for %s: %v", userID, err)
	}
}

// NotifyStreakMilestone marks a crossed streak threshold.
func NotifyStreakMilestone(notifier NotificationCreator, userID uuid.UUID, streak, bonusXP int) {
	bgCtx := context.Background()
	req := &notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypeStreakMilestone,
		Title:   "Série en feu !",
		Message: fmt.Sprintf("%d jours d'affilée : +%d XP bonus", streak, bonusXP),
		Data: map[string]any{
			"streak":   streak,
			"bonus_xp": bonusXP,
		},
	}
	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create streak-milestone notification for %s: %v", userID, err)
	}
}
