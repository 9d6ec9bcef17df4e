package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/dayflow/dayflow-api/internal/today"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("priority", validatePriority); err != nil {
		panic(fmt.Sprintf("failed to register priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("today_filter", validateTodayFilter); err != nil {
		panic(fmt.Sprintf("failed to register today_filter validator: %v", err))
	}
	if err := Validate.RegisterValidation("sort_order", validateSortOrder); err != nil {
		panic(fmt.Sprintf("failed to register sort_order validator: %v", err))
	}
}

func validatePriority(fl validator.FieldLevel) bool {
	return ValidatePriority(fl.Field().String()) == nil
}

func validateTodayFilter(fl validator.FieldLevel) bool {
	return today.ValidFilter(today.Filter(fl.Field().String()))
}

func validateSortOrder(fl validator.FieldLevel) bool {
	return ValidateSortOrder(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidatePriority validates a Priority string value
func ValidatePriority(value string) error {
	switch models.Priority(value) {
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'high', 'medium', or 'low')", value)
	}
}

// ValidateTodayFilter validates a today-view filter tag
func ValidateTodayFilter(value string) error {
	if today.ValidFilter(today.Filter(value)) {
		return nil
	}
	return fmt.Errorf("invalid filter: %s (must be 'all', 'pending', 'completed', or 'overdue')", value)
}

// ValidateSortOrder validates a sort order preference value
func ValidateSortOrder(value string) error {
	switch models.SortOrder(value) {
	case models.SortOrderPriority, models.SortOrderDueDate:
		return nil
	default:
		return fmt.Errorf("invalid sort order: %s (must be 'priority' or 'due_date')", value)
	}
}
