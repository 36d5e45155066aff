package countdown

import "fmt"

// FormatTime formats seconds as m:ss. Negative values render as 0:00.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
