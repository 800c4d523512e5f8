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
	"fitQuestAPI/internal/types/user"
	"fitQuestAPI/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserService struct {
	db            *pgxpool.Pool
	progress      *ProgressService
	notifications *NotificationService
}

func NewUserService(db *pgxpool.Pool, progress *ProgressService, notifications *NotificationService) *UserService {
	return &UserService{db: db, progress: progress, notifications: notifications}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New().String(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at
	`

	err := s.db.QueryRow(
		ctx,
		query,
		u.ID,
		u.ClerkID,
		u.Email,
		u.Username,
		u.FirstName,
		u.LastName,
		u.ImageURL,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Seed the gamification snapshot alongside the account.
	userID, err := uuid.Parse(u.ID)
	if err == nil {
		if _, err := s.progress.GetProgress(ctx, userID); err != nil {
			log.Printf("CreateUser: progress seed failed for %s: %v", u.ID, err)
		}
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// GetProfile bundles the account with its revalidated progress snapshot.
func (s *UserService) GetProfile(ctx context.Context, clerkID string) (*user.Profile, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", u.ID, err)
	}
	prog, err := s.progress.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user.Profile{User: u, Progress: prog}, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET
		username = COALESCE(NULLIF($2, ''), username),
		first_name = COALESCE(NULLIF($3, ''), first_name),
		last_name = COALESCE(NULLIF($4, ''), last_name),
		image_url = COALESCE(NULLIF($5, ''), image_url),
		updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at
	`

	u := &user.User{}
	err := s.db.QueryRow(
		ctx,
		query,
		clerkID,
		req.Username,
		req.FirstName,
		req.LastName,
		req.ImageURL,
	).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return u, nil
}

// DeleteUserByClerkID removes the account. Dependent rows (progress,
// workouts, challenges, friendships, badges) go with it via cascades.
func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// AddFriend creates a confirmed friendship both ways and pays each side the
// flat friend bonus. Re-adding an existing friend is a no-op without XP.
func (s *UserService) AddFriend(ctx context.Context, userID uuid.UUID, friendClerkID string) error {
	friendID, err := s.progress.UserIDByClerkID(ctx, friendClerkID)
	if err != nil {
		return err
	}
	if friendID == userID {
		return fmt.Errorf("cannot add yourself as a friend")
	}

	tag, err := s.db.Exec(ctx, `
	INSERT INTO friendships (user_id, friend_id, created_at)
	VALUES (LEAST($1, $2), GREATEST($1, $2), NOW())
	ON CONFLICT (user_id, friend_id) DO NOTHING
	`, userID, friendID)
	if err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil // already friends
	}

	for _, id := range []uuid.UUID{userID, friendID} {
		if _, _, err := s.progress.GrantXPForReason(ctx, id, progress.ReasonFriendAdd); err != nil {
			log.Printf("AddFriend: friend bonus failed for %s: %v", id, err)
		}
	}

	if s.notifications != nil {
		adderName := "Un ami"
		if err := s.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, userID).Scan(&adderName); err != nil {
			log.Printf("AddFriend: username lookup failed for %s: %v", userID, err)
		}
		go utils.NotifyFriendAdded(s.notifications, friendID, adderName)
	}
	return nil
}

func (s *UserService) RemoveFriend(ctx context.Context, userID uuid.UUID, friendClerkID string) error {
	friendID, err := s.progress.UserIDByClerkID(ctx, friendClerkID)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `
	DELETE FROM friendships
	WHERE user_id = LEAST($1, $2) AND friend_id = GREATEST($1, $2)
	`, userID, friendID)
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("friendship not found")
	}
	return nil
}

func (s *UserService) ListFriends(ctx context.Context, userID uuid.UUID) ([]user.Friend, error) {
	query := `
	SELECT u.id, u.clerk_id, u.email, u.username, u.first_name, u.last_name, u.image_url,
	       u.created_at, u.updated_at,
	       p.xp, p.level, p.current_streak, f.created_at
	FROM friendships f
	JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
	LEFT JOIN user_progress p ON p.user_id = u.id
	WHERE f.user_id = $1 OR f.friend_id = $1
	ORDER BY u.username
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := []user.Friend{}
	for rows.Next() {
		u := &user.User{}
		var xp, level, streak *int
		var since time.Time
		err := rows.Scan(
			&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.ImageURL,
			&u.CreatedAt, &u.UpdatedAt,
			&xp, &level, &streak, &since,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		f := user.Friend{User: u, Since: since.Format("2006-01-02")}
		if xp != nil {
			f.XP, f.Level, f.Streak = *xp, *level, *streak
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// GetLeaderboard ranks the user and their friends by XP. scope "global"
// widens it to everyone.
func (s *UserService) GetLeaderboard(ctx context.Context, userID uuid.UUID, scope string, limit int) ([]user.LeaderboardEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	filter := `
	WHERE u.id = $1 OR u.id IN (
		SELECT CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		FROM friendships f
		WHERE f.user_id = $1 OR f.friend_id = $1
	)`
	if scope == "global" {
		filter = `WHERE $1::uuid IS NOT NULL`
	}

	query := `
	SELECT u.id, u.clerk_id, u.username, u.image_url,
	       COALESCE(p.xp, 0), COALESCE(p.level, 1), COALESCE(p.level_name, ''), COALESCE(p.current_streak, 0)
	FROM users u
	LEFT JOIN user_progress p ON p.user_id = u.id
	` + filter + `
	ORDER BY COALESCE(p.xp, 0) DESC, COALESCE(p.current_streak, 0) DESC, u.username ASC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []user.LeaderboardEntry{}
	rank := 0
	for rows.Next() {
		u := &user.User{}
		e := user.LeaderboardEntry{User: u}
		err := rows.Scan(&u.ID, &u.ClerkID, &u.Username, &u.ImageURL,
			&e.XP, &e.Level, &e.LevelName, &e.Streak)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		rank++
		e.Rank = rank
		e.IsMe = u.ID == userID.String()
		if e.LevelName == "" {
			e.LevelName = gamification.LevelName(e.Level)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CheckBadges evaluates the whole catalog against the user's current history
// and persists any newly earned badges, paying the unlock bonus for each.
// Already-persisted unlocks never fire twice.
func (s *UserService) CheckBadges(ctx context.Context, userID uuid.UUID) ([]gamification.Badge, error) {
	history, err := loadWorkoutHistory(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	challenges, wins, err := s.challengeStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	var friends int
	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM friendships WHERE user_id = $1 OR friend_id = $1`, userID).Scan(&friends)
	if err != nil {
		return nil, fmt.Errorf("failed to count friends: %w", err)
	}

	stats := gamification.ComputeBadgeStats(history, challenges, wins, friends, time.Now())

	newlyEarned := []gamification.Badge{}
	for _, b := range gamification.UnlockedBadges(stats) {
		tag, err := s.db.Exec(ctx, `
		INSERT INTO user_badges (user_id, badge_id, unlocked_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, badge_id) DO NOTHING
		`, userID, b.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to persist badge %s: %w", b.ID, err)
		}
		if tag.RowsAffected() == 0 {
			continue // unlocked earlier
		}
		newlyEarned = append(newlyEarned, b)
		if _, _, err := s.progress.GrantXPForReason(ctx, userID, progress.ReasonBadgeUnlock); err != nil {
			log.Printf("CheckBadges: unlock bonus failed for %s/%s: %v", userID, b.ID, err)
		}
		if s.notifications != nil {
			go utils.NotifyBadgeUnlocked(s.notifications, userID, b.Name, b.Icon)
		}
	}
	return newlyEarned, nil
}

// ListBadges returns the catalog annotated with the user's unlocks.
func (s *UserService) ListBadges(ctx context.Context, userID uuid.UUID) (map[string]any, error) {
	rows, err := s.db.Query(ctx,
		`SELECT badge_id, unlocked_at FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	unlockedAt := map[string]time.Time{}
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		unlockedAt[id] = at
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	type badgeStatus struct {
		gamification.Badge
		Unlocked   bool       `json:"unlocked"`
		UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	}
	catalog := make([]badgeStatus, 0, len(gamification.Badges))
	unlocked := 0
	for _, b := range gamification.Badges {
		st := badgeStatus{Badge: b}
		if at, ok := unlockedAt[b.ID]; ok {
			st.Unlocked = true
			st.UnlockedAt = &at
			unlocked++
		}
		catalog = append(catalog, st)
	}

	return map[string]any{
		"badges":   catalog,
		"unlocked": unlocked,
		"total":    len(catalog),
	}, nil
}

func (s *UserService) challengeStats(ctx context.Context, userID uuid.UUID) ([]challenge.Challenge, int, error) {
	rows, err := s.db.Query(ctx, `
	SELECT `+challengeColumns+`
	FROM challenges
	WHERE (sender_id = $1 OR receiver_id = $1) AND status IN ('accepted', 'completed')
	`, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load challenge stats: %w", err)
	}
	defer rows.Close()

	challenges := []challenge.Challenge{}
	wins := 0
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, *c)
		if c.WinnerID != nil && *c.WinnerID == userID {
			wins++
		}
	}
	return challenges, wins, rows.Err()
}
