package crawl

import (
	"fmt"
	"time"
)

// FormatRows formats a row count for display.
func FormatRows(n int) string {
	if n == 1 {
		return "1 row"
	}
	return fmt.Sprintf("%d rows", n)
}

// FormatRate formats rows per minute over elapsed.
func FormatRate(rows int, elapsed time.Duration) string {
	if elapsed < time.Second {
		return "- rows/min"
	}
	return fmt.Sprintf("%.1f rows/min", float64(rows)/elapsed.Minutes())
}

// FormatElapsed rounds elapsed to whole seconds.
func FormatElapsed(elapsed time.Duration) string {
	return elapsed.Round(time.Second).String()
}

// FormatSummary describes the outcome of a finished run.
func FormatSummary(total int, elapsed time.Duration, stopped bool) string {
	verb := "Finished"
	if stopped {
		verb = "Stopped"
	}
	return fmt.Sprintf("%s: %s saved in %s (%s)", verb, FormatRows(total), FormatElapsed(elapsed), FormatRate(total, elapsed))
}
