package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"fitQuestAPI/internal/types/workout"
	"fitQuestAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type WorkoutHandler struct {
	workoutService  *services.WorkoutService
	progressService *services.ProgressService
	userHandler     *UserHandler
}

func NewWorkoutHandler(workoutService *services.WorkoutService, progressService *services.ProgressService, userHandler *UserHandler) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService:  workoutService,
		progressService: progressService,
		userHandler:     userHandler,
	}
}

// SaveWorkout logs a session and returns both the stored workout and what it
// earned (XP, streak movement, milestone, level-up).
func (h *WorkoutHandler) SaveWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	var req workout.SaveWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, result, err := h.workoutService.SaveWorkout(ctx, userID, &req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// New history may have crossed a badge condition; check off the request path.
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := h.userHandler.userService.CheckBadges(bgCtx, userID); err != nil {
			log.Printf("SaveWorkout: badge check failed for %s: %v", userID, err)
		}
	}()

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"workout": saved,
		"result":  result,
	})
}

func (h *WorkoutHandler) GetWorkouts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	workouts, err := h.workoutService.ListWorkouts(ctx, userID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, workouts)
}

func (h *WorkoutHandler) GetWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	workoutID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workout id")
		return
	}

	found, err := h.workoutService.GetWorkout(ctx, userID, workoutID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Workout not found")
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}

func (h *WorkoutHandler) DeleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	workoutID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workout id")
		return
	}

	if err := h.workoutService.DeleteWorkout(ctx, userID, workoutID); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Workout deleted"})
}

// GetProgress returns the revalidated snapshot.
func (h *WorkoutHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	prog, err := h.progressService.GetProgress(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, prog)
}

// DailyLogin grants the once-per-day login bonus.
func (h *WorkoutHandler) DailyLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	prog, granted, err := h.progressService.DailyLogin(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"progress": prog,
		"granted":  granted,
	})
}

// ReconcileProgress rebuilds the snapshot from the full history. Exposed for
// the client's pull-to-refresh repair path.
func (h *WorkoutHandler) ReconcileProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	prog, err := h.progressService.ReconcileProgress(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, prog)
}
