package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"fitQuestAPI/internal/types/user"
	"fitQuestAPI/middleware"
	"fitQuestAPI/services"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate is shared by every handler: request DTOs carry their own rules.
var validate = validator.New()

type UserHandler struct {
	userService     *services.UserService
	progressService *services.ProgressService
}

func NewUserHandler(userService *services.UserService, progressService *services.ProgressService) *UserHandler {
	return &UserHandler{
		userService:     userService,
		progressService: progressService,
	}
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.userService.CreateUser(ctx, &req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, u)
}

// GetProfile returns the account plus its gamification snapshot.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	profile, err := h.userService.GetProfile(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.userService.UpdateProfileByClerkID(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	friends, err := h.userService.ListFriends(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, friends)
}

func (h *UserHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	var req struct {
		FriendClerkID string `json:"friend_clerk_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FriendClerkID == "" {
		respondWithError(w, http.StatusBadRequest, "friend_clerk_id is required")
		return
	}

	if err := h.userService.AddFriend(ctx, userID, req.FriendClerkID); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Friend added"})
}

func (h *UserHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	friendClerkID := r.URL.Query().Get("friendClerkId")
	if friendClerkID == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'friendClerkId' is required")
		return
	}

	if err := h.userService.RemoveFriend(ctx, userID, friendClerkID); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Friend removed"})
}

func (h *UserHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	scope := r.URL.Query().Get("scope")
	entries, err := h.userService.GetLeaderboard(ctx, userID, scope, 0)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *UserHandler) GetBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	badges, err := h.userService.ListBadges(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, badges)
}

func (h *UserHandler) CheckBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	earned, err := h.userService.CheckBadges(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"newly_earned": earned})
}

// authedUserID resolves the Clerk identity on the request to the internal
// user id, writing the error response itself on failure.
func (h *UserHandler) authedUserID(ctx context.Context, w http.ResponseWriter) (uuid.UUID, bool) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}
	userID, err := h.progressService.UserIDByClerkID(ctx, clerkID)
	if err != nil {
		log.Printf("authedUserID: failed to resolve %s: %v", clerkID, err)
		respondWithError(w, http.StatusNotFound, "User not found")
		return uuid.Nil, false
	}
	return userID, true
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
