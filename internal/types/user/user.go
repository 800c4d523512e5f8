package user

import (
	"time"

	"fitQuestAPI/internal/types/progress"
)

type User struct {
	ID        string    `json:"id" db:"id"`
	ClerkID   string    `json:"clerk_id" db:"clerk_id"`
	Email     string    `json:"email" db:"email"`
	Username  string    `json:"username" db:"username"`
	FirstName *string   `json:"first_name" db:"first_name"`
	LastName  *string   `json:"last_name" db:"last_name"`
	ImageURL  *string   `json:"image_url" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Profile bundles the account with its gamification snapshot.
type Profile struct {
	User     *User                  `json:"user"`
	Progress *progress.UserProgress `json:"progress"`
}

// Friend is a confirmed friendship as shown in lists: the other user plus
// the slice of their progress worth displaying.
type Friend struct {
	User   *User  `json:"user"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
	Streak int    `json:"streak"`
	Since  string `json:"since"`
}

// LeaderboardEntry is one ranked row. Rank is 1-based and assigned by the
// query, so ties resolve deterministically by username.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	User      *User  `json:"user"`
	XP        int    `json:"xp"`
	Level     int    `json:"level"`
	LevelName string `json:"level_name"`
	Streak    int    `json:"streak"`
	IsMe      bool   `json:"is_me"`
}

type CreateUserRequest struct {
	ClerkID   string  `json:"clerk_id" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Username  string  `json:"username" validate:"required,min=3,max=32"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	ImageURL  *string `json:"image_url"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username" validate:"omitempty,min=3,max=32"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url" validate:"omitempty,url"`
}
