// Tests for file name sanitization.

package wiki

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Field Glossary", "Field_Glossary"},
		{"API (v2) / Notes", "API_v2_Notes"},
		{"snake_case-name", "snake_case-name"},
		{"a  __  b", "a_b"},
		{"(draft)", "draft"},
		{"Notes!", "Notes"},
		{"Café résumé", "Café_résumé"},
		{"日本語", "日本語"},
		{"???", "_"},
		{"", "_"},
		{"2024-01-02", "2024-01-02"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
