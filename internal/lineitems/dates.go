package lineitems

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the form expected by a native date input.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var aspNetDate = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

// NormalizeDate reformats a server date into YYYY-MM-DD. Anything it cannot
// parse falls back to today.
func NormalizeDate(raw string, today time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if m := aspNetDate.FindStringSubmatch(raw); m != nil {
			if ms, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				return time.UnixMilli(ms).UTC().Format(DateLayout)
			}
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format(DateLayout)
			}
		}
	}
	return today.Format(DateLayout)
}
