package domain

import "testing"

func TestValidSubfieldScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  bool
	}{
		{-1, false},
		{0, true},
		{3, true},
		{5, true},
		{6, false},
	}
	for _, tt := range tests {
		if got := ValidSubfieldScore(tt.score); got != tt.want {
			t.Errorf("ValidSubfieldScore(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestSumScores(t *testing.T) {
	t.Parallel()

	if got := SumScores(nil); got != 0 {
		t.Errorf("SumScores(nil) = %d, want 0", got)
	}
	if got := SumScores([]int{5, 4, 3, 2}); got != 14 {
		t.Errorf("SumScores = %d, want 14", got)
	}
	if got := SumScores([]int{20, 20, 20, 20, 20}); got != 100 {
		t.Errorf("SumScores = %d, want 100", got)
	}
}

func TestValidationError_Fields(t *testing.T) {
	t.Parallel()

	err := NewValidationError("categories", "exactly 5 required")
	if got := err.Error(); got != "validation: categories: exactly 5 required" {
		t.Errorf("unexpected Error(): %q", got)
	}
}
