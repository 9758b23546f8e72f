package sanitizer

import "testing"

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already clean", "+14155550123", "+14155550123"},
		{"spaces and dashes", "+1 415-555-0123", "+14155550123"},
		{"parentheses and dots", "+1 (415) 555.0123", "+14155550123"},
		{"double zero prefix", "0014155550123", "+14155550123"},
		{"surrounding whitespace", "  +14155550123  ", "+14155550123"},
		{"missing plus", "14155550123", ""},
		{"leading zero country code", "+04155550123", ""},
		{"too short", "+1415", ""},
		{"too long", "+141555501234567890", ""},
		{"letters", "+1415call-now", ""},
		{"empty", "", ""},
		{"only noise", " -() ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePhone(tt.input); got != tt.want {
				t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Dana Kim", "Dana Kim"},
		{"surrounding whitespace", "  Dana Kim  ", "Dana Kim"},
		{"internal runs collapse", "Dana   \t Kim", "Dana Kim"},
		{"newlines collapse", "Dana\nKim", "Dana Kim"},
		{"unicode preserved", "José Núñez", "José Núñez"},
		{"empty", "", ""},
		{"only whitespace", "   \t\n  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeReason(t *testing.T) {
	if got := SanitizeReason("  staff   meeting \n room A "); got != "staff meeting room A" {
		t.Errorf("unexpected result: %q", got)
	}
}
