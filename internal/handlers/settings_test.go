package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/gorilla/mux"
)

func settingsRouter(h *SettingsHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/settings").Subrouter())
	return r
}

func TestGetSettingsDefaults(t *testing.T) {
	t.Parallel()

	user := testUser()
	handler := NewSettingsHandler(newFakePrefsRepo(), nil)
	router := settingsRouter(handler)

	req := authedRequest(t, "GET", "/settings", "", user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var prefs models.Preferences
	decodeData(t, w, &prefs)
	if !prefs.TaskReminders || !prefs.OverdueAlerts {
		t.Error("defaults should enable reminders and overdue alerts")
	}
	if prefs.ReminderLeadMin != 30 {
		t.Errorf("ReminderLeadMin = %d, want 30", prefs.ReminderLeadMin)
	}
	if prefs.TodaySortOrder != models.SortOrderPriority {
		t.Errorf("TodaySortOrder = %s, want priority", prefs.TodaySortOrder)
	}
}

func TestUpdateSettings(t *testing.T) {
	t.Parallel()

	user := testUser()
	repo := newFakePrefsRepo()
	handler := NewSettingsHandler(repo, nil)
	router := settingsRouter(handler)

	req := authedRequest(t, "PUT", "/settings", `{"task_reminders":false,"reminder_lead_minutes":45,"today_sort_order":"due_date"}`, user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	stored := repo.prefs[user.ID]
	if stored == nil {
		t.Fatal("preferences not persisted")
	}
	if stored.TaskReminders {
		t.Error("TaskReminders not disabled")
	}
	if !stored.OverdueAlerts {
		t.Error("OverdueAlerts changed without being in the request")
	}
	if stored.ReminderLeadMin != 45 {
		t.Errorf("ReminderLeadMin = %d, want 45", stored.ReminderLeadMin)
	}
	if stored.TodaySortOrder != models.SortOrderDueDate {
		t.Errorf("TodaySortOrder = %s, want due_date", stored.TodaySortOrder)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	t.Parallel()

	handler := NewSettingsHandler(newFakePrefsRepo(), nil)
	router := settingsRouter(handler)

	tests := []struct {
		name string
		body string
	}{
		{"invalid sort order", `{"today_sort_order":"alphabetical"}`},
		{"zero lead", `{"reminder_lead_minutes":0}`},
		{"negative lead", `{"reminder_lead_minutes":-5}`},
		{"oversized lead", `{"reminder_lead_minutes":2000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(t, "PUT", "/settings", tt.body, testUser())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}
