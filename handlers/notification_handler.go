package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"fitQuestAPI/internal/types/notification"
	"fitQuestAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	userHandler         *UserHandler
}

func NewNotificationHandler(notificationService *services.NotificationService, userHandler *UserHandler) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		userHandler:         userHandler,
	}
}

func (h *NotificationHandler) RegisterDeviceToken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	var req notification.RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.notificationService.RegisterDeviceToken(ctx, userID, &req); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device token registered"})
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notifications, err := h.notificationService.ListNotifications(ctx, userID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	notificationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	if err := h.notificationService.MarkRead(ctx, userID, notificationID); err != nil {
		respondWithError(w, http.StatusNotFound, "Notification not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification marked read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.userHandler.authedUserID(ctx, w)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(ctx, userID); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked read"})
}
