package youtube

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// FormatDuration turns an ISO-8601 duration like PT1H2M3S into 1:02:03.
// Durations under an hour render as M:SS. Unparseable input yields "".
func FormatDuration(iso string) string {
	m := isoDurationRe.FindStringSubmatch(iso)
	if m == nil {
		return ""
	}
	h := atoiOrZero(m[1])
	min := atoiOrZero(m[2])
	sec := atoiOrZero(m[3])
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, min, sec)
	}
	return fmt.Sprintf("%d:%02d", min, sec)
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// FormatViews renders a raw view count like 1234567 as "1.2M views".
func FormatViews(raw string) string {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return ""
	}
	switch {
	case n >= 1_000_000_000:
		return compact(float64(n)/1_000_000_000, "B") + " views"
	case n >= 1_000_000:
		return compact(float64(n)/1_000_000, "M") + " views"
	case n >= 1_000:
		return compact(float64(n)/1_000, "K") + " views"
	case n == 1:
		return "1 view"
	default:
		return fmt.Sprintf("%d views", n)
	}
}

// compact renders 1.2M style figures, dropping a trailing ".0".
func compact(v float64, suffix string) string {
	s := fmt.Sprintf("%.1f", v)
	s = strings.TrimSuffix(s, ".0")
	return s + suffix
}

// FormatPublished renders an RFC3339 timestamp as a "3 years ago" label.
func FormatPublished(publishedAt string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return ""
	}
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	switch {
	case d >= 365*24*time.Hour:
		return agoLabel(int(d/(365*24*time.Hour)), "year")
	case d >= 30*24*time.Hour:
		return agoLabel(int(d/(30*24*time.Hour)), "month")
	case d >= 7*24*time.Hour:
		return agoLabel(int(d/(7*24*time.Hour)), "week")
	case d >= 24*time.Hour:
		return agoLabel(int(d/(24*time.Hour)), "day")
	case d >= time.Hour:
		return agoLabel(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return agoLabel(int(d/time.Minute), "minute")
	default:
		return "just now"
	}
}

func agoLabel(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
