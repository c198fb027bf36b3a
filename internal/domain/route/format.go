package route

import "fmt"

// FormatDuration renders seconds as "{h}h {m}m", or "{m}m" under an hour.
// Leftover seconds are dropped, not rounded.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatDistance renders meters as kilometres with one decimal, e.g. "346.1 km".
func FormatDistance(meters int) string {
	return fmt.Sprintf("%.1f km", float64(meters)/1000)
}
