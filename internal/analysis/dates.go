package analysis

import (
	"strings"
	"time"

	"cobranza/internal/config"
	"cobranza/internal/dataset"
)

// Day-first layouts tried in order. ISO dates are unambiguous and accepted too.
var dayFirstLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006 3:04:05 PM",
	"2-1-2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2.1.2006",
	"2/1/06",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDayFirst parses a date written day before month.
func ParseDayFirst(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthKey returns the YYYY-MM bucket of a day-first date, or "" when the
// date is empty or unparseable.
func MonthKey(s string) string {
	t, ok := ParseDayFirst(s)
	if !ok {
		return ""
	}
	return t.Format("2006-01")
}

// BucketMonths adds the mes column derived from fechacobrobanco and returns
// how many non-empty dates could not be parsed.
func BucketMonths(t *dataset.Table) (int, error) {
	col, err := t.MustColumn(config.ColChargeDate)
	if err != nil {
		return 0, err
	}

	unparsed := 0
	months := make([]string, t.Len())
	for i := range months {
		raw := t.Value(i, col)
		months[i] = MonthKey(raw)
		if months[i] == "" && strings.TrimSpace(raw) != "" {
			unparsed++
		}
	}

	if err := t.AddColumn(config.ColMonth, func(i int) string { return months[i] }); err != nil {
		return 0, err
	}
	return unparsed, nil
}
