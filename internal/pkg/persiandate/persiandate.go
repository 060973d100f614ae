// Package persiandate normalizes travel dates that may arrive either as
// Gregorian ISO strings or as Solar-Hijri (Jalali) encoded strings, the
// calendar used by the booking frontends. The conversion follows the
// Khayyam-derived arithmetic used by the jalaali reference implementations.
package persiandate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a plain calendar date, calendar-agnostic once normalized.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Time returns the date at midnight in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Normalize parses a date string in either calendar and returns the
// Gregorian calendar date. Jalali input is detected by year range: the Solar
// Hijri years in circulation (1300–1499) do not overlap plausible Gregorian
// travel dates.
func Normalize(input string) (Date, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}

	// Full timestamps keep only the date part.
	if i := strings.IndexAny(s, "T "); i > 0 {
		s = s[:i]
	}

	y, m, d, err := splitDate(s)
	if err != nil {
		return Date{}, err
	}

	switch {
	case y >= 1300 && y < 1500:
		return jalaliToGregorian(y, m, d)
	case y >= 1700 && y < 3000:
		if !validGregorian(y, m, d) {
			return Date{}, fmt.Errorf("invalid gregorian date %q", input)
		}
		return Date{Year: y, Month: time.Month(m), Day: d}, nil
	default:
		return Date{}, fmt.Errorf("year %d outside supported calendars", y)
	}
}

// splitDate accepts YYYY-MM-DD or YYYY/MM/DD.
func splitDate(s string) (y, m, d int, err error) {
	sep := "-"
	if strings.Contains(s, "/") {
		sep = "/"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed date %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, convErr := strconv.Atoi(strings.TrimSpace(p))
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("malformed date %q", s)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

func validGregorian(y, m, d int) bool {
	if m < 1 || m > 12 || d < 1 {
		return false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return t.Year() == y && int(t.Month()) == m && t.Day() == d
}

// jalaliToGregorian validates a Jalali date and converts it.
func jalaliToGregorian(jy, jm, jd int) (Date, error) {
	if jm < 1 || jm > 12 || jd < 1 {
		return Date{}, fmt.Errorf("invalid jalali date %d-%d-%d", jy, jm, jd)
	}
	max := 31
	if jm > 6 {
		max = 30
	}
	if jm == 12 && !isJalaliLeap(jy) {
		max = 29
	}
	if jd > max {
		return Date{}, fmt.Errorf("invalid jalali date %d-%d-%d", jy, jm, jd)
	}

	gy, gm, gd := jdnToGregorian(jalaliToJDN(jy, jm, jd))
	return Date{Year: gy, Month: time.Month(gm), Day: gd}, nil
}

// Break years of the 2820-year Jalali cycle used by the arithmetic calendar.
var jalaliBreaks = []int{
	-61, 9, 38, 199, 426, 686, 756, 818, 1111, 1181,
	1210, 1635, 2060, 2097, 2192, 2262, 2324, 2394, 2456, 3178,
}

// jalCal computes, for a Jalali year, the number of leap years elapsed, the
// Gregorian year of the corresponding Nowruz, and the March day it falls on.
func jalCal(jy int) (leap, gy, march int) {
	gy = jy + 621
	leapJ := -14
	jp := jalaliBreaks[0]

	var jump int
	for i := 1; i < len(jalaliBreaks); i++ {
		jm := jalaliBreaks[i]
		jump = jm - jp
		if jy < jm {
			break
		}
		leapJ += jump/33*8 + jump%33/4
		jp = jm
	}
	n := jy - jp

	leapJ += n/33*8 + (n%33+3)/4
	if jump%33 == 4 && jump-n == 4 {
		leapJ++
	}

	leapG := gy/4 - (gy/100+1)*3/4 - 150
	march = 20 + leapJ - leapG

	if jump-n < 6 {
		n = n - jump + (jump+4)/33*33
	}
	leap = ((n+1)%33 - 1) % 4
	if leap == -1 {
		leap = 4
	}
	return leap, gy, march
}

func isJalaliLeap(jy int) bool {
	leap, _, _ := jalCal(jy)
	return leap == 0
}

// jalaliToJDN converts a Jalali date to its Julian day number.
func jalaliToJDN(jy, jm, jd int) int {
	_, gy, march := jalCal(jy)
	return gregorianToJDN(gy, 3, march) + (jm-1)*31 - jm/7*(jm-7) + jd - 1
}

// gregorianToJDN converts a Gregorian date to its Julian day number.
func gregorianToJDN(gy, gm, gd int) int {
	d := (gy+(gm-8)/6+100100)*1461/4 + (153*((gm+9)%12)+2)/5 + gd - 34840408
	return d - (gy+100100+(gm-8)/6)/100*3/4 + 752
}

// jdnToGregorian converts a Julian day number back to a Gregorian date.
func jdnToGregorian(jdn int) (gy, gm, gd int) {
	j := 4*jdn + 139361631
	j += (4*jdn+183187720)/146097*3/4*4 - 3908
	i := j%1461/4*5 + 308
	gd = i%153/5 + 1
	gm = i/153%12 + 1
	gy = j/1461 - 100100 + (8-gm)/6
	return gy, gm, gd
}
