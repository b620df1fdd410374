package names

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "John Smith", "John Smith"},
		{"accents folded", "María García", "Maria Garcia"},
		{"apostrophe", "O'Brien", "O Brien"},
		{"hyphen", "Jean-Pierre Dupont", "Jean Pierre Dupont"},
		{"backslash", `Mc\Donald`, "Mc Donald"},
		{"whitespace collapsed", "  John   Smith ", "John Smith"},
		{"curly apostrophe", "O’Connor", "O Connor"},
		{"mixed", "  José  O'Hara-Núñez ", "Jose O Hara Nunez"},
		{"empty", "", ""},
		{"only punctuation", "-'-", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	samples := []string{
		"María García",
		"O'Brien, Jean-Pierre",
		"  Müller   Schmidt ",
		"plain ascii name",
		"Ñoño Ñíguez",
		"",
	}

	for _, s := range samples {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", s, once, twice)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"maria garcia", "Maria Garcia"},
		{"JOHN SMITH", "John Smith"},
		{"jean pierre dupont", "Jean Pierre Dupont"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := TitleCase(tt.input); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
