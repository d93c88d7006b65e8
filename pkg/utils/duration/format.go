// ABOUTME: Duration formatting for operator-facing progress messages
// ABOUTME: Renders elapsed time as words rounded to the second

package duration

import (
	"fmt"
	"strings"
	"time"
)

// Human renders d like "1 minute 5 seconds". Durations under a second
// render as "under a second".
func Human(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Second {
		return "under a second"
	}

	seconds := int(d.Seconds())
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	parts := []string{}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if secs > 0 && hours == 0 {
		parts = append(parts, plural(secs, "second"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
