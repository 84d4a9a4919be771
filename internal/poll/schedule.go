package poll

import "time"

// IsDue reports whether a poll may run at now. A nil schedule is always due;
// otherwise the current UTC hour must be listed.
func IsDue(schedule []int, now time.Time) bool {
	if schedule == nil {
		return true
	}
	hour := now.UTC().Hour()
	for _, h := range schedule {
		if h == hour {
			return true
		}
	}
	return false
}
