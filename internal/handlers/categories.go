package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dayflow/dayflow-api/internal/database"
	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/dayflow/dayflow-api/internal/request"
	"github.com/dayflow/dayflow-api/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// CategoryHandler handles category requests
type CategoryHandler struct {
	categoryRepo *database.CategoryRepository
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryRepo *database.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categoryRepo: categoryRepo}
}

// RegisterRoutes registers category routes on the given router
// The router should already have the /categories prefix
func (h *CategoryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListCategories).Methods("GET")
	r.HandleFunc("", h.CreateCategory).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteCategory).Methods("DELETE")
}

// CreateCategoryRequest represents a create category request
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// ListCategories lists categories for the authenticated user
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	categories, err := h.categoryRepo.GetByUserID(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve categories")
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

// CreateCategory creates a new category
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed: "+err.Error())
		return
	}

	req.Name = validation.SanitizeText(req.Name)
	if req.Name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name is required and cannot be empty after sanitization")
		return
	}
	if req.Color == "" {
		req.Color = "#808080"
	}

	category := &models.Category{
		ID:     uuid.New(),
		UserID: user.ID,
		Name:   req.Name,
		Color:  req.Color,
	}

	if err := h.categoryRepo.Create(r.Context(), category); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create category")
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

// DeleteCategory deletes a category; tasks keep running with the reference
// cleared by the database.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid category ID")
		return
	}

	category, err := h.categoryRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Category not found")
		return
	}
	if category.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Category does not belong to user")
		return
	}

	if err := h.categoryRepo.Delete(r.Context(), id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
