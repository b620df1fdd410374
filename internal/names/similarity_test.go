package names

import "testing"

func TestSimilarityExactMatch(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"John Smith", "John Smith"},
		{"John Smith", "john smith"},
		{"María García", "Maria Garcia"},
		{"O'Brien", "O Brien"},
	}

	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", tt.a, tt.b, got)
		}
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := []struct {
		a, b string
	}{
		{"Jon Smith", "Jonathan Smith"},
		{"A B", "Xavier Yz"},
		{"María García", "M. Garcia"},
		{"", "anything"},
	}

	for _, p := range pairs {
		ab := Similarity(p.a, p.b)
		ba := Similarity(p.b, p.a)
		if ab != ba {
			t.Errorf("Similarity(%q, %q) = %v but reversed = %v", p.a, p.b, ab, ba)
		}
	}
}

func TestSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"Jon Smith", "Jonathan Smith"},
		{"abc", "xyz"},
		{"", ""},
		{"one name", "completely different"},
	}

	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Similarity(%q, %q) = %v, out of [0,1]", p[0], p[1], got)
		}
	}
}

// Similar names must score higher than dissimilar ones; the exact values
// are an implementation detail.
func TestSimilarityOrdering(t *testing.T) {
	base := "Jon Smith"
	near := Similarity(base, "Jonathan Smith")
	far := Similarity(base, "Wei Zhang")

	if near <= far {
		t.Errorf("Similarity(%q, %q) = %v not greater than Similarity(%q, %q) = %v",
			base, "Jonathan Smith", near, base, "Wei Zhang", far)
	}
	if near <= 0.5 {
		t.Errorf("Similarity(%q, %q) = %v, expected above the acceptance threshold", base, "Jonathan Smith", near)
	}
	if far >= 0.5 {
		t.Errorf("Similarity(%q, %q) = %v, expected below the acceptance threshold", base, "Wei Zhang", far)
	}
}

func TestSimilarityDisjoint(t *testing.T) {
	if got := Similarity("aaaa", "zzzz"); got > 0.1 {
		t.Errorf("Similarity of disjoint strings = %v, want near 0", got)
	}
}
