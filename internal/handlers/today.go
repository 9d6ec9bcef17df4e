package handlers

import (
	"net/http"
	"time"

	"github.com/dayflow/dayflow-api/internal/database"
	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/dayflow/dayflow-api/internal/mutation"
	"github.com/dayflow/dayflow-api/internal/request"
	"github.com/dayflow/dayflow-api/internal/streak"
	"github.com/dayflow/dayflow-api/internal/today"
	"github.com/dayflow/dayflow-api/internal/validation"
	"github.com/gorilla/mux"
)

// TodayHandler serves the aggregated today view
type TodayHandler struct {
	taskRepo  database.TaskRepositoryInterface
	prefsRepo database.PreferencesRepositoryInterface
	journal   *mutation.Journal
	now       func() time.Time
}

// NewTodayHandler creates a new today view handler
func NewTodayHandler(taskRepo database.TaskRepositoryInterface, prefsRepo database.PreferencesRepositoryInterface, journal *mutation.Journal) *TodayHandler {
	return &TodayHandler{
		taskRepo:  taskRepo,
		prefsRepo: prefsRepo,
		journal:   journal,
		now:       time.Now,
	}
}

// RegisterRoutes registers today view routes on the given router
// The router should already have the /today prefix
func (h *TodayHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetToday).Methods("GET")
}

// TodayResponse is the aggregated today view payload
type TodayResponse struct {
	Tasks        []*models.Task   `json:"tasks"`
	Filter       today.Filter     `json:"filter"`
	SortOrder    models.SortOrder `json:"sort_order"`
	PendingCount int              `json:"pending_count"`
	Streak       int              `json:"streak"`
	AllDone      bool             `json:"all_done"`
}

// GetToday returns the tasks relevant today, the completion streak, and the
// all-done flag. The filter query parameter narrows the set; the streak and
// all_done always describe the unfiltered today set.
func (h *TodayHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	filter := today.FilterAll
	if f := r.URL.Query().Get("filter"); f != "" {
		if err := validation.ValidateTodayFilter(f); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		filter = today.Filter(f)
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

	sortOrder := prefs.TodaySortOrder
	if s := r.URL.Query().Get("sort"); s != "" {
		if err := validation.ValidateSortOrder(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		sortOrder = models.SortOrder(s)
	}

	tasks, err := h.taskRepo.GetByUserID(ctx, user.ID, nil, nil)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}
	if h.journal != nil {
		tasks = h.journal.Overlay(user.ID, tasks)
	}

	now := h.now()
	todaySet := today.Select(tasks, now)
	view := today.Apply(todaySet, filter, now)
	today.Sort(view, today.KeysFor(sortOrder))

	respondJSON(w, http.StatusOK, TodayResponse{
		Tasks:        view,
		Filter:       filter,
		SortOrder:    sortOrder,
		PendingCount: today.PendingCount(todaySet),
		Streak:       streak.Calculate(tasks, now),
		AllDone:      today.AllDone(todaySet),
	})
}
