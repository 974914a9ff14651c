package attribution

import "time"

// TimeBuckets returns the hour (0..23) and weekday (0..6, Monday = 0) of t
// on the server's local clock.
func TimeBuckets(t time.Time) (hour, weekday int) {
	local := t.In(time.Local)
	return local.Hour(), (int(local.Weekday()) + 6) % 7
}
