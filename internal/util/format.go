package util

import "fmt"

// FormatHoursMinutes renders a duration in seconds as "Xh Ym", dropping seconds.
func FormatHoursMinutes(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}

// FormatClock renders a duration in seconds as "m:ss".
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
