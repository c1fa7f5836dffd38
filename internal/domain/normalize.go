package domain

import (
	"fmt"
	"strings"
	"time"
)

// Normalize converts a raw source record into a canonical Flight using the
// source's fixed airport and time zone. It returns ok=false when the record
// is not resolved yet and should be skipped until a later run.
func Normalize(raw RawFlight, iatas []IATAEntry) (Flight, bool, error) {
	cfg, found := SourceConfigFor(raw.Source())
	if !found {
		return Flight{}, false, fmt.Errorf("%w: %q", ErrUnknownSource, raw.Source())
	}

	f, complete, err := raw.extract()
	if err != nil {
		return Flight{}, false, fmt.Errorf("normalize %s record: %w", cfg.ID, err)
	}
	if !complete {
		return Flight{}, false, nil
	}

	scheduled, err := AssembleTime(f.Date, f.Scheduled, cfg.TimeZone)
	if err != nil {
		return Flight{}, false, fmt.Errorf("normalize %s scheduled departure: %w", cfg.ID, err)
	}

	var actual *time.Time
	if f.Actual != "" {
		a, err := AssembleTime(f.Date, f.Actual, cfg.TimeZone)
		if err != nil {
			return Flight{}, false, fmt.Errorf("normalize %s actual departure: %w", cfg.ID, err)
		}
		actual = &a
	}

	arrival, resolved := LookupIATA(iatas, f.Destination)

	return Flight{
		Source:          cfg.ID,
		Number:          strings.ReplaceAll(strings.TrimSpace(f.Number), " ", ""),
		Status:          strings.ToUpper(strings.TrimSpace(f.Status)),
		ScheduledDep:    scheduled,
		ActualDep:       actual,
		AirportDep:      cfg.Airport,
		AirportArr:      arrival,
		ArrivalResolved: resolved,
		IngestedAt:      clock.Now().UTC(),
	}, true, nil
}

// IsCompleted reports whether a status describes a finished outcome, i.e. it
// contains "departed" or "cancelled" in any case. Only completed flights are
// persisted.
func IsCompleted(status string) bool {
	s := strings.ToLower(status)
	return strings.Contains(s, "departed") || strings.Contains(s, "cancelled")
}
