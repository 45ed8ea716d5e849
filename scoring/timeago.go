package scoring

import (
	"fmt"
	"time"
)

const (
	day   = 24 * time.Hour
	year  = time.Duration(365.25 * float64(day))
	month = time.Duration(30.44 * float64(day))
)

// TimeAgo labels how long ago t was, relative to now.
func TimeAgo(t time.Time) string {
	return TimeAgoAt(t, time.Now())
}

// TimeAgoAt labels how long before now t was: "{n}y ago", "{n}mo ago" or
// "recently".
func TimeAgoAt(t, now time.Time) string {
	diff := now.Sub(t)
	if years := int(diff / year); years >= 1 {
		return fmt.Sprintf("%dy ago", years)
	}
	if months := int(diff / month); months >= 1 {
		return fmt.Sprintf("%dmo ago", months)
	}
	return "recently"
}
