package handlers

import (
	"net/http"
	"strconv"

	"github.com/dayflow/dayflow-api/internal/database"
	"github.com/dayflow/dayflow-api/internal/request"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// NotificationHandler handles notification feed requests
type NotificationHandler struct {
	notificationRepo database.NotificationRepositoryInterface
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationRepo database.NotificationRepositoryInterface) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

// RegisterRoutes registers notification routes on the given router
// The router should already have the /notifications prefix
func (h *NotificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListNotifications).Methods("GET")
	r.HandleFunc("/{id}/read", h.MarkRead).Methods("POST")
}

// ListNotifications lists recent notifications for the authenticated user
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	notifications, err := h.notificationRepo.GetByUserID(r.Context(), user.ID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve notifications")
		return
	}

	respondJSON(w, http.StatusOK, notifications)
}

// MarkRead marks a notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid notification ID")
		return
	}

	if err := h.notificationRepo.MarkRead(r.Context(), id, user.ID); err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Notification not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
