package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
	userHandler      *UserHandler
}

func NewChallengeHandler(challengeService *services.ChallengeService, userHandler *UserHandler) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
		userHandler:      userHandler,
	}
}

func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	var req challenge.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.challengeService.CreateChallenge(ctx, userID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// GetChallenges lists every challenge the caller participates in. Reading
// also settles anything whose window has closed.
func (h *ChallengeHandler) GetChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	views, err := h.challengeService.ListChallenges(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, views)
}

func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	view, err := h.challengeService.GetChallenge(ctx, userID, challengeID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Challenge not found")
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

func (h *ChallengeHandler) AcceptChallenge(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.challengeService.AcceptChallenge, "Challenge accepted")
}

func (h *ChallengeHandler) DeclineChallenge(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.challengeService.DeclineChallenge, "Challenge declined")
}

func (h *ChallengeHandler) CancelChallenge(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.challengeService.CancelChallenge, "Challenge cancelled")
}

// lifecycle runs one guarded transition. A stale transition is reported as a
// conflict, not an error: the client refetches and sees the real state.
func (h *ChallengeHandler) lifecycle(w http.ResponseWriter, r *http.Request, action func(context.Context, uuid.UUID, uuid.UUID) error, message string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	if err := action(ctx, userID, challengeID); err != nil {
		if errors.Is(err, services.ErrStaleChallengeState) {
			respondWithError(w, http.StatusConflict, "Challenge state already changed")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": message})
}

// GetChallengeTypes exposes the scoring catalog for the client's picker.
func (h *ChallengeHandler) GetChallengeTypes(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{"types": challenge.AllTypes})
}
