// Package parse turns free-text task descriptions into structured
// drafts: title, category, due date, priority, tags and recurrence
// are extracted from a single line of input.
//
// Parsing is pure. The current time is an explicit argument so that
// relative date phrases ("tomorrow", "next friday") are reproducible
// in tests, and the same input can be re-parsed for live previews
// without side effects.
package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
)

// Draft is the structured output of Parse. It is not yet a persisted
// task; the synchronizer's create path turns drafts into tasks.
type Draft struct {
	Title    string
	Category string
	DueDate  *time.Time
	Priority task.Priority
	Tags     []string
	Repeat   task.Repeat
}

// Parse extracts structure from a free-text task description. It never
// fails: unrecognized input yields a draft with defaults (category
// personal, priority medium, no due date), and a title that may be
// empty after stripping; callers decide whether to reject that.
func Parse(input string, now time.Time) Draft {
	d := Draft{
		Title:    input,
		Priority: task.PriorityMedium,
	}

	// Category matches against the raw input, before any tokens are
	// stripped, in fixed catalog order.
	d.Category = detectCategory(input)

	var consumed bool
	var c bool
	d.Tags, d.Title, c = extractTags(d.Title)
	consumed = consumed || c
	d.Repeat, d.Title, c = extractRepeat(d.Title)
	consumed = consumed || c
	d.Priority, d.Title, c = extractPriority(d.Title)
	consumed = consumed || c
	d.DueDate, d.Title, c = extractDueDate(d.Title, now)
	consumed = consumed || c

	d.Title = cleanTitle(d.Title, consumed)
	return d
}

// detectCategory returns the first catalog category whose keyword list
// has a case-insensitive substring match. First match wins by catalog
// order; the catalog's stable ordering keeps this deterministic.
func detectCategory(input string) string {
	lower := strings.ToLower(input)
	for _, c := range task.Catalog() {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, kw) {
				return c.ID
			}
		}
	}
	return task.DefaultCategoryID
}

var tagPattern = regexp.MustCompile(`#(\w+)`)

// extractTags collects every #word token in input order. Duplicates
// pass through as-is.
func extractTags(input string) ([]string, string, bool) {
	matches := tagPattern.FindAllStringSubmatch(input, -1)
	if len(matches) == 0 {
		return nil, input, false
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags, tagPattern.ReplaceAllString(input, ""), true
}

var repeatPattern = regexp.MustCompile(`(?i)\brepeat:(daily|weekly|monthly|yearly)\b`)

func extractRepeat(input string) (task.Repeat, string, bool) {
	m := repeatPattern.FindStringSubmatch(input)
	if len(m) < 2 {
		return task.RepeatNone, input, false
	}
	repeat, err := task.ParseRepeat(strings.ToLower(m[1]))
	if err != nil {
		return task.RepeatNone, input, false
	}
	return repeat, repeatPattern.ReplaceAllString(input, ""), true
}

// Urgency keywords are checked before low-priority phrases; if both
// somehow match, high wins.
var (
	highKeywords = []string{"high priority", "urgent", "asap", "critical", "important"}
	lowKeywords  = []string{"low priority", "whenever", "someday", "eventually"}
)

func extractPriority(input string) (task.Priority, string, bool) {
	lower := strings.ToLower(input)
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			return task.PriorityHigh, stripKeyword(input, kw), true
		}
	}
	for _, kw := range lowKeywords {
		if strings.Contains(lower, kw) {
			return task.PriorityLow, stripKeyword(input, kw), true
		}
	}
	return task.PriorityMedium, input, false
}

func stripKeyword(input, keyword string) string {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	return re.ReplaceAllString(input, "")
}

var (
	weekdayNames = []struct {
		name string
		day  time.Weekday
	}{
		{"monday", time.Monday},
		{"tuesday", time.Tuesday},
		{"wednesday", time.Wednesday},
		{"thursday", time.Thursday},
		{"friday", time.Friday},
		{"saturday", time.Saturday},
		{"sunday", time.Sunday},
	}

	monthDayPattern = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	isoDatePattern  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// extractDueDate runs the natural-language date extraction. Relative
// phrases resolve against now; the result is date-only (midnight in
// now's location).
func extractDueDate(input string, now time.Time) (*time.Time, string, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	lower := strings.ToLower(input)

	relative := []struct {
		phrase string
		date   time.Time
	}{
		{"this weekend", upcomingWeekday(today, time.Saturday)},
		{"next week", today.AddDate(0, 0, 7)},
		{"tomorrow", today.AddDate(0, 0, 1)},
		{"tonight", today},
		{"today", today},
	}
	for _, r := range relative {
		if strings.Contains(lower, r.phrase) {
			d := r.date
			return &d, stripKeyword(input, r.phrase), true
		}
	}

	for _, wd := range weekdayNames {
		patterns := []string{
			`by\s+` + wd.name,
			`next\s+` + wd.name,
			`\b` + wd.name + `\b`,
		}
		for _, pattern := range patterns {
			re := regexp.MustCompile(`(?i)` + pattern)
			if re.MatchString(lower) {
				d := nextWeekday(today, wd.day)
				return &d, re.ReplaceAllString(input, ""), true
			}
		}
	}

	if m := monthDayPattern.FindStringSubmatch(input); len(m) > 2 {
		if month, ok := monthsByPrefix[strings.ToLower(m[1])]; ok {
			day := atoiSafe(m[2])
			if day >= 1 && day <= 31 {
				d := time.Date(today.Year(), month, day, 0, 0, 0, 0, today.Location())
				if d.Before(today) {
					d = d.AddDate(1, 0, 0)
				}
				return &d, monthDayPattern.ReplaceAllString(input, ""), true
			}
		}
	}

	if m := isoDatePattern.FindStringSubmatch(input); len(m) > 1 {
		if d, err := time.Parse("2006-01-02", m[1]); err == nil {
			return &d, isoDatePattern.ReplaceAllString(input, ""), true
		}
	}

	return nil, input, false
}

// nextWeekday resolves a bare weekday name to the next occurrence,
// always strictly in the future.
func nextWeekday(from time.Time, target time.Weekday) time.Time {
	daysUntil := int(target) - int(from.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return from.AddDate(0, 0, daysUntil)
}

// upcomingWeekday is like nextWeekday but today counts as a match.
func upcomingWeekday(from time.Time, target time.Weekday) time.Time {
	daysUntil := (int(target) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, daysUntil)
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// cleanTitle collapses whitespace and trims. Filler words left over at
// the boundaries by token removal ("by", "for", "at", "on") are only
// stripped when something was actually consumed, so a token-free title
// passes through unchanged apart from the trim.
func cleanTitle(title string, consumed bool) string {
	title = whitespacePattern.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)

	if consumed {
		for _, filler := range []string{"by", "for", "at", "on"} {
			title = regexp.MustCompile(`(?i)^`+filler+`\s+`).ReplaceAllString(title, "")
			title = regexp.MustCompile(`(?i)\s+`+filler+`$`).ReplaceAllString(title, "")
		}
		title = strings.TrimSpace(title)
	}
	return title
}
