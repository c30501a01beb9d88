package nlp

import (
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantTitle string
		wantTime  string
	}{
		{
			name:      "remind me to with pm time",
			input:     "remind me to call mom at 5pm",
			wantTitle: "Call mom",
			wantTime:  "17:00",
		},
		{
			name:      "12-hour with minutes and space",
			input:     "Add dentist appointment at 8:30 am",
			wantTitle: "Dentist",
			wantTime:  "08:30",
		},
		{
			name:      "noon",
			input:     "schedule lunch with Ana at 12pm",
			wantTitle: "Lunch with ana",
			wantTime:  "12:00",
		},
		{
			name:      "midnight",
			input:     "set backup at 12am",
			wantTitle: "Backup",
			wantTime:  "00:00",
		},
		{
			name:      "title stops at today",
			input:     "create a task water the plants today",
			wantTitle: "Water plants",
			wantTime:  "",
		},
		{
			name:      "title stops at by",
			input:     "new report by 17:30",
			wantTitle: "Report",
			wantTime:  "17:30",
		},
		{
			name:      "title stops at a word starting with at",
			input:     "add meeting attendance at 5pm",
			wantTitle: "Meeting",
			wantTime:  "17:00",
		},
		{
			name:      "title stops at a word starting with by",
			input:     "remind me to water the plants bytheway",
			wantTitle: "Water plants",
			wantTime:  "",
		},
		{
			name:      "time only",
			input:     "remind me at 7pm",
			wantTitle: "",
			wantTime:  "19:00",
		},
		{
			name:      "neither",
			input:     "what is going on",
			wantTitle: "",
			wantTime:  "",
		},
		{
			name:      "verb inside another word is ignored",
			input:     "reset everything",
			wantTitle: "",
			wantTime:  "",
		},
		{
			name:      "invalid 12-hour candidate falls back to 24-hour",
			input:     "add standup 99pm or 09:15",
			wantTitle: "Standup 99pm or 09:15",
			wantTime:  "09:15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Extract(tt.input)
			if got.Title != tt.wantTitle {
				t.Errorf("Expected title %q, got %q", tt.wantTitle, got.Title)
			}
			if got.Time != tt.wantTime {
				t.Errorf("Expected time %q, got %q", tt.wantTime, got.Time)
			}
		})
	}
}

func TestExtract_BareClock(t *testing.T) {
	t.Parallel()

	got := Extract("set meeting 09:30")
	if got.Time != "09:30" {
		t.Errorf("Expected time 09:30, got %q", got.Time)
	}
	if got.Title == "" || !strings.Contains(strings.ToLower(got.Title), "meeting") {
		t.Errorf("Expected a non-empty title containing 'meeting', got %q", got.Title)
	}
}

func TestDetectTime_IdempotentOnOwnOutput(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"remind me to call mom at 5pm",
		"add yoga at 6:45 am",
		"set meeting 09:30",
		"new alarm at 12am",
		"schedule review at 23:05",
	}

	for _, input := range inputs {
		first := DetectTime(input)
		if first == "" {
			t.Fatalf("Expected a time in %q", input)
		}
		if again := DetectTime(first); again != first {
			t.Errorf("Expected DetectTime(%q) to re-extract %q, got %q", first, first, again)
		}
	}
}

func TestExtraction_Empty(t *testing.T) {
	t.Parallel()

	if !(Extraction{}).Empty() {
		t.Error("Expected zero extraction to be empty")
	}
	if (Extraction{Time: "10:00"}).Empty() {
		t.Error("Expected extraction with a time not to be empty")
	}
}
