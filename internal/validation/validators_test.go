package validation

import "testing"

func TestValidatePriority(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"high", "medium", "low"} {
		if err := ValidatePriority(valid); err != nil {
			t.Errorf("ValidatePriority(%q) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "urgent", "HIGH"} {
		if err := ValidatePriority(invalid); err == nil {
			t.Errorf("ValidatePriority(%q) = nil, want error", invalid)
		}
	}
}

func TestValidateTodayFilter(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"all", "pending", "completed", "overdue"} {
		if err := ValidateTodayFilter(valid); err != nil {
			t.Errorf("ValidateTodayFilter(%q) = %v, want nil", valid, err)
		}
	}
	if err := ValidateTodayFilter("done"); err == nil {
		t.Error("ValidateTodayFilter(\"done\") = nil, want error")
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims whitespace", "  buy milk  ", "buy milk"},
		{"strips control characters", "buy\x00 milk\x07", "buy milk"},
		{"keeps newline and tab", "line one\n\tline two", "line one\n\tline two"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SanitizeText(tt.input); got != tt.expected {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
