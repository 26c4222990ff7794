package contract

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxRelativeAmount bounds N in "N <unit> ago"; larger values overflow time arithmetic.
const maxRelativeAmount = 1_000_000

// ParseRelativeTime parses expressions like "3 months ago" or "1 week ago"
// into an absolute time relative to now.
// Supported units are minutes, hours, days, weeks, months and years (singular or plural).
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) != 3 || fields[2] != "ago" {
		return time.Time{}, fmt.Errorf("relative time must look like 'N <unit> ago', got %q", s)
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return time.Time{}, fmt.Errorf("invalid amount %q in relative time", fields[0])
	}
	if n > maxRelativeAmount {
		return time.Time{}, fmt.Errorf("amount %d in relative time exceeds %d", n, maxRelativeAmount)
	}

	switch strings.TrimSuffix(fields[1], "s") {
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute), nil
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour), nil
	case "day":
		return now.AddDate(0, 0, -n), nil
	case "week":
		return now.AddDate(0, 0, -7*n), nil
	case "month":
		return now.AddDate(0, -n, 0), nil
	case "year":
		return now.AddDate(-n, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time unit %q (use minutes, hours, days, weeks, months or years)", fields[1])
	}
}
