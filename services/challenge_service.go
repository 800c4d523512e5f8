package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fitQuestAPI/internal/gamification"
	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/internal/types/progress"
	"fitQuestAPI/middleware"
	"fitQuestAPI/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStaleChallengeState is returned when a lifecycle action no longer
// applies because the challenge moved on (already answered, cancelled or
// settled). Callers treat it as a no-op, not a failure.
var ErrStaleChallengeState = errors.New("challenge state changed, action skipped")

type ChallengeService struct {
	db            *pgxpool.Pool
	progress      *ProgressService
	notifications *NotificationService
}

func NewChallengeService(db *pgxpool.Pool, progress *ProgressService, notifications *NotificationService) *ChallengeService {
	return &ChallengeService{db: db, progress: progress, notifications: notifications}
}

const challengeColumns = `
	id, sender_id, receiver_id, type, target, duration_days,
	start_date, end_date, status, sender_score, receiver_score,
	winner_id, achieved_tier, earned_xp, earned_badge,
	created_at, updated_at, completed_at`

// CreateChallenge opens a pending challenge against a friend and pays the
// sender the flat send bonus. The window is fixed here: end date never moves
// afterwards.
func (s *ChallengeService) CreateChallenge(ctx context.Context, senderID uuid.UUID, req *challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("unknown challenge type %q", req.Type)
	}

	receiverID, err := s.progress.UserIDByClerkID(ctx, req.FriendClerkID)
	if err != nil {
		return nil, err
	}
	if receiverID == senderID {
		return nil, fmt.Errorf("cannot challenge yourself")
	}

	now := time.Now()
	c := &challenge.Challenge{
		ID:           uuid.New(),
		SenderID:     senderID,
		ReceiverID:   receiverID,
		Type:         req.Type,
		Target:       req.Target,
		DurationDays: req.Duration,
		StartDate:    now,
		EndDate:      now.AddDate(0, 0, req.Duration),
		Status:       challenge.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO challenges (id, sender_id, receiver_id, type, target, duration_days,
		start_date, end_date, status, sender_score, receiver_score, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, $10, $11)
	`, c.ID, c.SenderID, c.ReceiverID, c.Type, c.Target, c.DurationDays,
		c.StartDate, c.EndDate, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	if _, _, err := s.progress.GrantXPForReason(ctx, senderID, progress.ReasonChallengeSend); err != nil {
		log.Printf("CreateChallenge: send bonus failed for %s: %v", senderID, err)
	}

	if s.notifications != nil {
		var senderName string
		if err := s.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, senderID).Scan(&senderName); err != nil {
			senderName = "Un ami"
		}
		go utils.NotifyChallengeReceived(s.notifications, receiverID, senderName, string(c.Type))
	}

	return c, nil
}

// AcceptChallenge moves a pending challenge to accepted. Only the receiver
// may accept, and only while it is still pending.
func (s *ChallengeService) AcceptChallenge(ctx context.Context, userID, challengeID uuid.UUID) error {
	err := s.transition(ctx, challengeID, challenge.StatusAccepted,
		`UPDATE challenges SET status = 'accepted', updated_at = NOW()
		 WHERE id = $1 AND receiver_id = $2 AND status = 'pending' AND end_date > NOW()`, userID)
	if err != nil {
		return err
	}
	s.notifyAnswered(ctx, challengeID, userID, true)
	return nil
}

// DeclineChallenge lets the receiver refuse a pending challenge.
func (s *ChallengeService) DeclineChallenge(ctx context.Context, userID, challengeID uuid.UUID) error {
	err := s.transition(ctx, challengeID, challenge.StatusDeclined,
		`UPDATE challenges SET status = 'declined', updated_at = NOW()
		 WHERE id = $1 AND receiver_id = $2 AND status = 'pending'`, userID)
	if err != nil {
		return err
	}
	s.notifyAnswered(ctx, challengeID, userID, false)
	return nil
}

func (s *ChallengeService) notifyAnswered(ctx context.Context, challengeID, receiverID uuid.UUID, accepted bool) {
	if s.notifications == nil {
		return
	}
	c, err := s.loadChallenge(ctx, challengeID)
	if err != nil {
		log.Printf("challenge %s: answer notification skipped: %v", challengeID, err)
		return
	}
	receiverName := "Un ami"
	if err := s.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, receiverID).Scan(&receiverName); err != nil {
		log.Printf("challenge %s: username lookup failed for %s: %v", challengeID, receiverID, err)
	}
	go utils.NotifyChallengeAnswered(s.notifications, c.SenderID, receiverName, accepted)
}

// CancelChallenge lets the sender withdraw a challenge that was not answered.
func (s *ChallengeService) CancelChallenge(ctx context.Context, userID, challengeID uuid.UUID) error {
	return s.transition(ctx, challengeID, challenge.StatusCancelled,
		`UPDATE challenges SET status = 'cancelled', updated_at = NOW()
		 WHERE id = $1 AND sender_id = $2 AND status = 'pending'`, userID)
}

// transition runs a guarded lifecycle update. Zero rows means the guard no
// longer holds: the state moved underneath us, which is reported as stale,
// never applied blindly.
func (s *ChallengeService) transition(ctx context.Context, challengeID uuid.UUID, to challenge.Status, query string, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, query, challengeID, userID)
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Printf("challenge %s: stale transition to %s by %s, skipped", challengeID, to, userID)
		return ErrStaleChallengeState
	}
	return nil
}

// GetChallenge returns one challenge as seen by the viewer, settling it first
// if its window has closed.
func (s *ChallengeService) GetChallenge(ctx context.Context, viewerID, challengeID uuid.UUID) (*challenge.View, error) {
	c, err := s.loadChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if c.SenderID != viewerID && c.ReceiverID != viewerID {
		return nil, fmt.Errorf("challenge not found")
	}

	c, err = s.reviewChallenge(ctx, c, viewerID)
	if err != nil {
		return nil, err
	}
	view := s.viewFor(c, viewerID)
	return &view, nil
}

// ListChallenges returns every challenge the viewer participates in, newest
// first. Reading is also when time advances: expired accepted challenges are
// settled, expired pending ones are cancelled, and the viewer's live score is
// refreshed on still-running ones.
func (s *ChallengeService) ListChallenges(ctx context.Context, viewerID uuid.UUID) ([]challenge.View, error) {
	query := `SELECT ` + challengeColumns + `
	FROM challenges
	WHERE sender_id = $1 OR receiver_id = $1
	ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*challenge.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	views := []challenge.View{}
	for _, c := range challenges {
		c, err = s.reviewChallenge(ctx, c, viewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, s.viewFor(c, viewerID))
	}
	return views, nil
}

// reviewChallenge applies the passage of time to one challenge: cancel
// expired invitations, settle closed windows, refresh the viewer's live score
// on running ones. It returns the possibly-updated challenge.
func (s *ChallengeService) reviewChallenge(ctx context.Context, c *challenge.Challenge, viewerID uuid.UUID) (*challenge.Challenge, error) {
	now := time.Now()
	switch {
	case c.Status == challenge.StatusPending && !now.Before(c.EndDate):
		// Invitation never answered before the window closed.
		_, err := s.db.Exec(ctx,
			`UPDATE challenges SET status = 'cancelled', updated_at = NOW()
			 WHERE id = $1 AND status = 'pending'`, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to expire challenge: %w", err)
		}
		c.Status = challenge.StatusCancelled
		return c, nil

	case c.Status == challenge.StatusAccepted && !now.Before(c.EndDate):
		return s.settleChallenge(ctx, c, viewerID)

	case c.Status == challenge.StatusAccepted:
		score, err := s.scoreParticipant(ctx, viewerID, c)
		if err != nil {
			return nil, err
		}
		column := "receiver_score"
		if viewerID == c.SenderID {
			column = "sender_score"
			c.SenderScore = score
		} else {
			c.ReceiverScore = score
		}
		_, err = s.db.Exec(ctx,
			`UPDATE challenges SET `+column+` = $2, updated_at = NOW()
			 WHERE id = $1 AND status = 'accepted'`, c.ID, score)
		if err != nil {
			log.Printf("challenge %s: live score refresh failed: %v", c.ID, err)
		}
		return c, nil
	}
	return c, nil
}

// settleChallenge finalizes an expired challenge exactly once. Both final
// scores are computed from the actual histories, the winner and reward are
// fixed, and the guarded update makes sure only one caller ever wins the
// settle: the loser of that race re-reads the settled row and grants nothing.
func (s *ChallengeService) settleChallenge(ctx context.Context, c *challenge.Challenge, viewerID uuid.UUID) (*challenge.Challenge, error) {
	senderScore, err := s.scoreParticipant(ctx, c.SenderID, c)
	if err != nil {
		return nil, err
	}
	receiverScore, err := s.scoreParticipant(ctx, c.ReceiverID, c)
	if err != nil {
		return nil, err
	}

	var winnerID *uuid.UUID
	winningScore := senderScore
	switch {
	case senderScore > receiverScore:
		winnerID = &c.SenderID
	case receiverScore > senderScore:
		winnerID = &c.ReceiverID
		winningScore = receiverScore
	}

	var achievedTier, earnedBadge *string
	earnedXP := 0
	if winnerID != nil {
		if reward := gamification.RewardFor(c.Type, winningScore, c.DurationDays); reward != nil {
			tier := string(reward.Tier)
			achievedTier = &tier
			earnedBadge = &reward.BadgeGlyph
			earnedXP = reward.XP
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin settlement: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
	UPDATE challenges
	SET status = 'completed',
	    sender_score = $2,
	    receiver_score = $3,
	    winner_id = $4,
	    achieved_tier = $5,
	    earned_xp = $6,
	    earned_badge = $7,
	    completed_at = NOW(),
	    updated_at = NOW()
	WHERE id = $1 AND status <> 'completed'
	`, c.ID, senderScore, receiverScore, winnerID, achievedTier, earnedXP, earnedBadge)
	if err != nil {
		return nil, fmt.Errorf("failed to settle challenge: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Someone else settled first; their verdict stands.
		return s.loadChallenge(ctx, c.ID)
	}

	// Payout rides the same transaction: the challenge completes with the
	// winner paid, or neither write lands.
	if winnerID != nil && earnedXP > 0 {
		if _, _, err := s.progress.grantXP(ctx, tx, *winnerID, earnedXP); err != nil {
			return nil, fmt.Errorf("failed to pay challenge reward: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	outcome := "decided"
	if winnerID == nil {
		outcome = "tie"
	}
	middleware.RecordChallengeCompleted(outcome)
	if winnerID != nil && earnedXP > 0 {
		middleware.RecordXPGrant(string(progress.ReasonChallengeWin), earnedXP)
	}

	if s.notifications != nil {
		for _, participantID := range []uuid.UUID{c.SenderID, c.ReceiverID} {
			won := winnerID != nil && *winnerID == participantID
			xp := 0
			if won {
				xp = earnedXP
			}
			go utils.NotifyChallengeSettled(s.notifications, participantID, won, xp)
		}
	}

	return s.loadChallenge(ctx, c.ID)
}

// SettleExpired sweeps every challenge whose window has closed: accepted
// ones are settled, unanswered invitations are cancelled. Lazy settlement on
// read already covers active users; the sweep covers pairs who both went
// quiet, so wins are paid without either of them opening the app.
func (s *ChallengeService) SettleExpired(ctx context.Context) (int, error) {
	tag, err := s.db.Exec(ctx, `
	UPDATE challenges SET status = 'cancelled', updated_at = NOW()
	WHERE status = 'pending' AND end_date <= NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel expired invitations: %w", err)
	}
	if n := tag.RowsAffected(); n > 0 {
		log.Printf("SettleExpired: cancelled %d expired invitations", n)
	}

	rows, err := s.db.Query(ctx, `
	SELECT id FROM challenges
	WHERE status = 'accepted' AND end_date <= NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired challenges: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan challenge id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	settled := 0
	for _, id := range ids {
		c, err := s.loadChallenge(ctx, id)
		if err != nil {
			log.Printf("SettleExpired: load %s failed: %v", id, err)
			continue
		}
		if c.Status != challenge.StatusAccepted {
			continue
		}
		if _, err := s.settleChallenge(ctx, c, c.SenderID); err != nil {
			log.Printf("SettleExpired: settle %s failed: %v", id, err)
			continue
		}
		settled++
	}
	return settled, nil
}

// scoreParticipant computes one side's score over the challenge window from
// the raw workout history.
func (s *ChallengeService) scoreParticipant(ctx context.Context, userID uuid.UUID, c *challenge.Challenge) (float64, error) {
	history, err := loadWorkoutHistory(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	return gamification.Score(c.Type, history, c.StartDate, c.EndDate), nil
}

func (s *ChallengeService) viewFor(c *challenge.Challenge, viewerID uuid.UUID) challenge.View {
	friendID := c.ReceiverID
	if viewerID == c.ReceiverID {
		friendID = c.SenderID
	}

	outcome := challenge.OutcomeActive
	if c.Status == challenge.StatusCompleted {
		switch {
		case c.WinnerID == nil:
			outcome = challenge.OutcomeTie
		case *c.WinnerID == viewerID:
			outcome = challenge.OutcomeVictory
		default:
			outcome = challenge.OutcomeDefeat
		}
	}

	return challenge.View{
		Challenge:   *c,
		MyScore:     c.ScoreFor(viewerID),
		FriendScore: c.ScoreFor(friendID),
		Outcome:     outcome,
	}
}

func (s *ChallengeService) loadChallenge(ctx context.Context, challengeID uuid.UUID) (*challenge.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`
	c, err := scanChallenge(s.db.QueryRow(ctx, query, challengeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("challenge not found")
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return c, nil
}

func scanChallenge(row pgx.Row) (*challenge.Challenge, error) {
	c := &challenge.Challenge{}
	err := row.Scan(
		&c.ID,
		&c.SenderID,
		&c.ReceiverID,
		&c.Type,
		&c.Target,
		&c.DurationDays,
		&c.StartDate,
		&c.EndDate,
		&c.Status,
		&c.SenderScore,
		&c.ReceiverScore,
		&c.WinnerID,
		&c.AchievedTier,
		&c.EarnedXP,
		&c.EarnedBadge,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
