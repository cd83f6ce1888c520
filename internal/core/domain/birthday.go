package domain

import "time"

// BirthdayWindowDays is the length of the upcoming birthday window.
const BirthdayWindowDays = 7

// BirthdayWindow is the inclusive month/day range [Today, Next].
type BirthdayWindow struct {
	Today          time.Time
	Next           time.Time
	LastDayOfMonth int
}

// NewBirthdayWindow builds the window starting at today.
func NewBirthdayWindow(today time.Time) BirthdayWindow {
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return BirthdayWindow{
		Today:          start,
		Next:           start.AddDate(0, 0, BirthdayWindowDays),
		LastDayOfMonth: time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day(),
	}
}

// Wraps reports whether the window crosses into the next month.
func (w BirthdayWindow) Wraps() bool {
	return w.Today.Day() >= w.Next.Day()
}

// Matches reports whether the month/day of birth falls within the window.
// The birth year is ignored.
func (w BirthdayWindow) Matches(birth time.Time) bool {
	month, day := birth.Month(), birth.Day()
	if !w.Wraps() {
		return month == w.Today.Month() && day >= w.Today.Day() && day <= w.Next.Day()
	}
	if month == w.Today.Month() && day >= w.Today.Day() && day <= w.LastDayOfMonth {
		return true
	}
	return month == w.Next.Month() && day <= w.Next.Day()
}

// Filter returns the contacts whose birthday falls within the window.
func (w BirthdayWindow) Filter(contacts []Contact) []Contact {
	matched := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if w.Matches(c.BirthDate) {
			matched = append(matched, c)
		}
	}
	return matched
}
