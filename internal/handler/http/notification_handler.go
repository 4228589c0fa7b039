package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/notification"
)

const defaultNotificationLimit = 20

type CreateNotificationRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type NotificationHandler struct {
	repo   notification.Repository
	tokens auth.TokenManager
}

func NewNotificationHandler(repo notification.Repository, tokens auth.TokenManager) *NotificationHandler {
	return &NotificationHandler{repo: repo, tokens: tokens}
}

func (h *NotificationHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(h.tokens))

		r.Get("/", h.handleGetNotifications)
		r.Post("/", h.handleCreateNotification)
		r.Get("/unread-count", h.handleGetUnreadCount)
		r.Put("/read-all", h.handleMarkAllAsRead)
		r.Put("/{id}/read", h.handleMarkAsRead)
		r.Delete("/{id}", h.handleDeleteNotification)
	})
}

func (h *NotificationHandler) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	notifications, err := h.repo.GetByUserID(r.Context(), claims.UserID, limit)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to get notifications")
		respondWithError(w, http.StatusInternalServerError, "Failed to get notifications")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

func (h *NotificationHandler) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var requestPayload CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if requestPayload.Type == "" || requestPayload.Message == "" {
		respondWithError(w, http.StatusBadRequest, "Type and message are required")
		return
	}

	notificationID, err := h.repo.Create(r.Context(), claims.UserID, requestPayload.Type, requestPayload.Message)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to create notification")
		respondWithError(w, http.StatusInternalServerError, "Failed to create notification")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":        "Notification created successfully",
		"notificationId": notificationID,
	})
}

func (h *NotificationHandler) handleMarkAsRead(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	notificationID, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.repo.MarkAsRead(r.Context(), claims.UserID, notificationID); err != nil {
		clientMessage := "Failed to mark notification as read"
		if errors.Is(err, notification.ErrNotFound) {
			clientMessage = "Notification not found"
		} else {
			log.Error().Err(err).Int64("notification_id", notificationID).Msg("Failed to mark notification as read")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (h *NotificationHandler) handleMarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	affected, err := h.repo.MarkAllAsRead(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to mark all notifications as read")
		respondWithError(w, http.StatusInternalServerError, "Failed to mark notifications as read")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "All notifications marked as read",
		"affectedRows": affected,
	})
}

func (h *NotificationHandler) handleGetUnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	count, err := h.repo.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to count unread notifications")
		respondWithError(w, http.StatusInternalServerError, "Failed to get unread count")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int64{"unreadCount": count})
}

func (h *NotificationHandler) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	notificationID, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.repo.Delete(r.Context(), claims.UserID, notificationID); err != nil {
		clientMessage := "Failed to delete notification"
		if errors.Is(err, notification.ErrNotFound) {
			clientMessage = "Notification not found"
		} else {
			log.Error().Err(err).Int64("notification_id", notificationID).Msg("Failed to delete notification")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted successfully"})
}
