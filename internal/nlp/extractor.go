// Package nlp extracts a task title and time of day from free-text chat input.
//
// The extractor is a best-effort heuristic built from a handful of regular
// expressions. Callers must tolerate partial results: title only, time only,
// or neither.
package nlp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/benvon/daily-agent/internal/timeutil"
)

var (
	twelveHourPattern = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(am|pm)`)
	clockPattern      = regexp.MustCompile(`([012]?\d):(\d{2})`)

	// verbs are word-bounded so "reset" or "address" do not start a title.
	// The end markers are prefixes: "attendance" ends a title just like "at".
	titlePattern  = regexp.MustCompile(`\b(?:add|remind me to|create|new|schedule|set)\s+(.*?)(?:\s+(?:at|by|today|tonight)|$)`)
	fillerPattern = regexp.MustCompile(`(?i)\b(?:a|the|task|reminder|appointment|schedule|agenda)\b`)
)

// Extraction is the result of parsing one sentence. Empty fields mean "not found".
type Extraction struct {
	Title string `json:"title"`
	Time  string `json:"time"`
}

// Empty reports whether neither a title nor a time was found
func (e Extraction) Empty() bool {
	return e.Title == "" && e.Time == ""
}

// Extract parses text into an optional title and HH:MM time
func Extract(text string) Extraction {
	return Extraction{
		Title: DetectTitle(text),
		Time:  DetectTime(text),
	}
}

// DetectTime finds the first time of day in text.
// A 12-hour "5pm" / "8:30 am" form takes priority over a bare "20:00" form.
// Candidates that do not form a valid clock value are skipped.
func DetectTime(text string) string {
	for _, m := range twelveHourPattern.FindAllStringSubmatch(text, -1) {
		if clock, ok := fromTwelveHour(m[1], m[2], m[3]); ok {
			return clock
		}
	}

	for _, m := range clockPattern.FindAllStringSubmatch(text, -1) {
		hours, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		clock := fmt.Sprintf("%02d:%s", hours, m[2])
		if timeutil.Valid(clock) {
			return clock
		}
	}

	return ""
}

func fromTwelveHour(hourText, minuteText, meridiem string) (string, bool) {
	hours, err := strconv.Atoi(hourText)
	if err != nil {
		return "", false
	}
	if minuteText == "" {
		minuteText = "00"
	}

	switch strings.ToLower(meridiem) {
	case "pm":
		if hours < 12 {
			hours += 12
		}
	case "am":
		if hours == 12 {
			hours = 0
		}
	}

	clock := fmt.Sprintf("%02d:%s", hours, minuteText)
	return clock, timeutil.Valid(clock)
}

// DetectTitle finds the span following a creation verb ("add", "remind me to", ...)
// up to the first word starting with "at", "by", "today" or "tonight", or the end of
// the text, with filler words removed and the first letter capitalised.
func DetectTitle(text string) string {
	m := titlePattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return ""
	}

	title := fillerPattern.ReplaceAllString(m[1], "")
	title = strings.Join(strings.Fields(title), " ")
	return capitalize(title)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
