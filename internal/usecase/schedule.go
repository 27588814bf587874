package usecase

import "time"

// dateOnly truncates t to its UTC calendar date.
func dateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// upcomingWeekday returns the next occurrence of weekday on or after from.
func upcomingWeekday(from time.Time, weekday time.Weekday) time.Time {
	from = dateOnly(from)
	days := (int(weekday) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, days)
}

// followingWeekday returns the next occurrence of weekday strictly after
// from. When from already falls on weekday the result is a week later, so a
// rollover run on session day schedules the next cycle rather than today's.
func followingWeekday(from time.Time, weekday time.Weekday) time.Time {
	from = dateOnly(from)
	days := (int(weekday) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}
