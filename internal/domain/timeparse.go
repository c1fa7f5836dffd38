package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidTimeFormat means a date or clock string could not be parsed.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrUnknownTimeZone means the zone name is not in the IANA database.
	ErrUnknownTimeZone = errors.New("unknown time zone")
)

// AssembleTime combines a local "YYYY-MM-DD" date and a 24-hour "HH:MM" clock
// into an absolute instant in the named IANA zone, applying the zone's rules
// for that calendar date.
func AssembleTime(date, clockTime, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil || zone == "" {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownTimeZone, zone)
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(date)+" "+strings.TrimSpace(clockTime), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q time %q", ErrInvalidTimeFormat, date, clockTime)
	}
	return t, nil
}

// splitDateTime splits "YYYY-MM-DD HH:MM[:SS]" into the date and an "HH:MM"
// clock, dropping seconds.
func splitDateTime(s string) (date, hhmm string, err error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	clockPart := parts[1]
	if strings.Count(clockPart, ":") == 2 {
		clockPart = clockPart[:strings.LastIndex(clockPart, ":")]
	}
	return parts[0], clockPart, nil
}

// reorderDayFirst converts a "DD/MM/YYYY" date to "YYYY-MM-DD".
func reorderDayFirst(s string) (string, error) {
	p := strings.Split(strings.TrimSpace(s), "/")
	if len(p) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return p[2] + "-" + p[1] + "-" + p[0], nil
}

// reorderUSShort converts a "MM-DD-YY" date to "20YY-MM-DD".
func reorderUSShort(s string) (string, error) {
	p := strings.Split(strings.TrimSpace(s), "-")
	if len(p) != 3 || len(p[2]) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return "20" + p[2] + "-" + p[0] + "-" + p[1], nil
}

// To24h converts a 12-hour clock to "HH:MM". Accepted shapes include
// "8:30 am", "08:30PM", "8:30A" and "(12:05 pm)".
func To24h(s string) (string, error) {
	raw := s
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	s = strings.ReplaceAll(s, " ", "")

	var pm bool
	switch {
	case strings.HasSuffix(s, "am"):
		s = strings.TrimSuffix(s, "am")
	case strings.HasSuffix(s, "pm"):
		s, pm = strings.TrimSuffix(s, "pm"), true
	case strings.HasSuffix(s, "a"):
		s = strings.TrimSuffix(s, "a")
	case strings.HasSuffix(s, "p"):
		s, pm = strings.TrimSuffix(s, "p"), true
	default:
		return "", fmt.Errorf("%w: missing am/pm in %q", ErrInvalidTimeFormat, raw)
	}

	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}
	hour, errH := strconv.Atoi(h)
	mins, errM := strconv.Atoi(m)
	if errH != nil || errM != nil || hour < 1 || hour > 12 || mins < 0 || mins > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}

	switch {
	case hour == 12 && !pm:
		hour = 0
	case hour != 12 && pm:
		hour += 12
	}
	return fmt.Sprintf("%02d:%02d", hour, mins), nil
}
