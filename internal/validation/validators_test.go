package validation

import (
	"testing"
)

type clockRequest struct {
	Time string   `validate:"required,clock"`
	Days []string `validate:"dive,day_tag"`
}

func TestValidate_CustomTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		req         clockRequest
		expectError bool
	}{
		{name: "valid", req: clockRequest{Time: "08:30", Days: []string{"mon", "today"}}},
		{name: "no days", req: clockRequest{Time: "23:59"}},
		{name: "bad clock", req: clockRequest{Time: "8:30pm"}, expectError: true},
		{name: "missing clock", req: clockRequest{}, expectError: true},
		{name: "bad day", req: clockRequest{Time: "08:30", Days: []string{"someday"}}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate.Struct(tt.req)
			if tt.expectError && err == nil {
				t.Error("Expected validation error")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestNormalizeDays(t *testing.T) {
	t.Parallel()

	got, err := NormalizeDays([]string{"Monday", "wed", "MON", " today "})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{"mon", "wed", "today"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}

	if _, err := NormalizeDays([]string{"funday"}); err == nil {
		t.Error("Expected error for unknown day")
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	if got := SanitizeText("  call\x00 mom\n "); got != "call mom" {
		t.Errorf("Expected %q, got %q", "call mom", got)
	}
}

func TestValidateClock(t *testing.T) {
	t.Parallel()

	if err := ValidateClock("07:00"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateClock("7"); err == nil {
		t.Error("Expected error for malformed clock")
	}
}
