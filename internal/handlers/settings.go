package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dayflow/dayflow-api/internal/database"
	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/dayflow/dayflow-api/internal/reminders"
	"github.com/dayflow/dayflow-api/internal/request"
	"github.com/dayflow/dayflow-api/internal/validation"
	"github.com/gorilla/mux"
)

// MaxReminderLeadMinutes caps the reminder lead at 24 hours
const MaxReminderLeadMinutes = 24 * 60

// SettingsHandler handles user preference requests
type SettingsHandler struct {
	prefsRepo database.PreferencesRepositoryInterface
	engine    *reminders.Engine
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(prefsRepo database.PreferencesRepositoryInterface, engine *reminders.Engine) *SettingsHandler {
	return &SettingsHandler{prefsRepo: prefsRepo, engine: engine}
}

// RegisterRoutes registers settings routes on the given router
// The router should already have the /settings prefix
func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetSettings).Methods("GET")
	r.HandleFunc("", h.UpdateSettings).Methods("PUT")
}

// UpdateSettingsRequest represents a preference update; absent fields keep
// their current value.
type UpdateSettingsRequest struct {
	TaskReminders   *bool   `json:"task_reminders,omitempty"`
	OverdueAlerts   *bool   `json:"overdue_alerts,omitempty"`
	TodaySortOrder  *string `json:"today_sort_order,omitempty"`
	ReminderLeadMin *int    `json:"reminder_lead_minutes,omitempty"`
}

// GetSettings returns the user's preferences, falling back to defaults when
// no row is stored yet.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	prefs, err := h.prefsRepo.Get(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load preferences")
		return
	}
	if prefs == nil {
		prefs = models.DefaultPreferences(user.ID)
	}

	respondJSON(w, http.StatusOK, prefs)
}

// UpdateSettings updates the user's preferences and re-plans reminders
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req UpdateSettingsRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	ctx := r.Context()
	prefs, err := h.prefsRepo.Get(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load preferences")
		return
	}
	if prefs == nil {
		prefs = models.DefaultPreferences(user.ID)
	}

	if req.TaskReminders != nil {
		prefs.TaskReminders = *req.TaskReminders
	}
	if req.OverdueAlerts != nil {
		prefs.OverdueAlerts = *req.OverdueAlerts
	}
	if req.TodaySortOrder != nil {
		if err := validation.ValidateSortOrder(*req.TodaySortOrder); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		prefs.TodaySortOrder = models.SortOrder(*req.TodaySortOrder)
	}
	if req.ReminderLeadMin != nil {
		if *req.ReminderLeadMin <= 0 || *req.ReminderLeadMin > MaxReminderLeadMinutes {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("reminder_lead_minutes must be between 1 and %d", MaxReminderLeadMinutes))
			return
		}
		prefs.ReminderLeadMin = *req.ReminderLeadMin
	}

	if err := h.prefsRepo.Upsert(ctx, prefs); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save preferences")
		return
	}

	// Changed lead time or toggles invalidate every installed timer
	if h.engine != nil {
		_ = h.engine.RefreshUser(ctx, user.ID)
	}

	respondJSON(w, http.StatusOK, prefs)
}
