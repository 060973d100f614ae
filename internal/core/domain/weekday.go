package domain

import "time"

// Weekday is a day-of-week token as stored on trip schedules.
// Ordering is fixed: sun=0 .. sat=6, matching time.Weekday.
type Weekday string

const (
	Sunday    Weekday = "sun"
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
)

var weekdayNames = map[Weekday]string{
	Sunday:    "Sunday",
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
}

var weekdayFromTime = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// WeekdayOf returns the token for a calendar date's weekday.
func WeekdayOf(t time.Time) Weekday {
	return weekdayFromTime[int(t.Weekday())]
}

// ParseWeekday parses a weekday token.
func ParseWeekday(s string) (Weekday, bool) {
	w := Weekday(s)
	_, ok := weekdayNames[w]
	return w, ok
}

// FullName returns the human-readable English day name, or the raw token when
// it is not a known weekday.
func (w Weekday) FullName() string {
	if name, ok := weekdayNames[w]; ok {
		return name
	}
	return string(w)
}

// WeekdayNames renders tokens as a human-readable list in the given order,
// e.g. "Monday, Wednesday, Friday".
func WeekdayNames(days []Weekday) string {
	out := ""
	for i, d := range days {
		if i > 0 {
			out += ", "
		}
		out += d.FullName()
	}
	return out
}
