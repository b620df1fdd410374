package names

import (
	"reflect"
	"testing"
)

func TestSplitAuthors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "simple conjunction",
			input: "John Smith and Jane Doe",
			want:  []string{"John Smith", "Jane Doe"},
		},
		{
			name:  "last comma first",
			input: "Smith, John and Doe, Jane",
			want:  []string{"John Smith", "Jane Doe"},
		},
		{
			name:  "mixed forms",
			input: "García, María and John Smith",
			want:  []string{"María García", "John Smith"},
		},
		{
			name:  "newlines in field",
			input: "John Smith\nand Jane Doe",
			want:  []string{"John Smith", "Jane Doe"},
		},
		{
			name:  "single author",
			input: "John Smith",
			want:  []string{"John Smith"},
		},
		{
			name:  "suffix after second comma stays put",
			input: "Smith, John, Jr.",
			want:  []string{"John, Jr. Smith"},
		},
		{
			name:  "empty field",
			input: "",
			want:  nil,
		},
		{
			name:  "blank field",
			input: "   ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitAuthors(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitAuthors(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveNoCandidates(t *testing.T) {
	r := NewResolver()

	got := r.Resolve("garcía, maría and o'brien, john", nil)
	want := []string{"Maria Garcia", "John O Brien"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveAcceptsSimilarCandidate(t *testing.T) {
	r := NewResolver()

	got := r.Resolve("Jon Smith", []string{"Jonathan Smith", "Wei Zhang"})
	want := []string{"Jonathan Smith"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveRejectsDissimilarCandidates(t *testing.T) {
	r := NewResolver()

	got := r.Resolve("Jon Smith", []string{"Wei Zhang", "Priya Patel"})
	want := []string{"Jon Smith"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveCandidateAppliedPerAuthor(t *testing.T) {
	r := NewResolver()

	got := r.Resolve("Smith, Jon and Doe, Jane", []string{"Jonathan Smith", "Jane M. Doe"})
	want := []string{"Jonathan Smith", "Jane M. Doe"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveEmptyField(t *testing.T) {
	r := NewResolver()

	if got := r.Resolve("  ", []string{"Jonathan Smith"}); got != nil {
		t.Errorf("Resolve of blank field = %v, want nil", got)
	}
}

func TestResolveThresholdBoundary(t *testing.T) {
	// A resolver with threshold 1.0 never accepts a non-identical
	// candidate.
	r := &Resolver{Threshold: 1.0}

	got := r.Resolve("Jon Smith", []string{"Jonathan Smith"})
	want := []string{"Jon Smith"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}
