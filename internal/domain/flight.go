package domain

import (
	"context"
	"errors"
	"time"
)

// ErrSourceUnreadable marks extraction failures that retrying cannot fix,
// such as a corrupt or oversized input line.
var ErrSourceUnreadable = errors.New("source unreadable")

// Flight is the canonical, source-independent record of one departure.
type Flight struct {
	ID           string     `json:"id,omitempty"`
	Source       SourceID   `json:"source"`
	Number       string     `json:"number"`
	Status       string     `json:"status"`
	ScheduledDep time.Time  `json:"scheduledDep"`
	ActualDep    *time.Time `json:"actualDep"`
	AirportDep   string     `json:"airportDep"`
	AirportArr   string     `json:"airportArr"`

	// Weather enrichment fields, nil until interpolated.
	Precipitation *float64 `json:"precipitation,omitempty"`
	CloudCover    *float64 `json:"cloud_cover,omitempty"`
	WindSpeed10m  *float64 `json:"wind_speed_10m,omitempty"`
	WindSpeed100m *float64 `json:"wind_speed_100m,omitempty"`

	IngestedAt time.Time `json:"ingestedAt"`

	// ArrivalResolved is false when AirportArr is a fallback pseudo-code.
	// It is a per-run diagnostic and is not persisted.
	ArrivalResolved bool `json:"-"`
}

// HasWeather reports whether all four weather measures are present.
func (f Flight) HasWeather() bool {
	return f.Precipitation != nil && f.CloudCover != nil && f.WindSpeed10m != nil && f.WindSpeed100m != nil
}

// Delay returns the departure delay in minutes. It reports false when the
// flight has no actual departure or left ahead of schedule.
func (f Flight) Delay() (float64, bool) {
	if f.ActualDep == nil {
		return 0, false
	}
	d := f.ActualDep.Sub(f.ScheduledDep).Minutes()
	if d < 0 {
		return 0, false
	}
	return d, true
}

// DedupKey identifies equivalent flight records across ingestion runs.
type DedupKey struct {
	ScheduledDep time.Time
	ActualDep    *time.Time
	AirportDep   string
	AirportArr   string
}

// Key returns the dedup key of the flight with instants normalized to UTC.
func (f Flight) Key() DedupKey {
	k := DedupKey{
		ScheduledDep: f.ScheduledDep.UTC(),
		AirportDep:   f.AirportDep,
		AirportArr:   f.AirportArr,
	}
	if f.ActualDep != nil {
		a := f.ActualDep.UTC()
		k.ActualDep = &a
	}
	return k
}

// IATAEntry is one row of the airport reference list.
type IATAEntry struct {
	Acronym string `json:"acronym"`
	Name    string `json:"name"`
}

// RawEvent represents an unprocessed message from the source topic or file.
type RawEvent struct {
	Source    SourceID
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Geocoder resolves a free-text place (an airport code) to coordinates.
type Geocoder interface {
	Locate(ctx context.Context, query string) (Coordinates, error)
}

// WeatherProvider fetches the hourly weather series of one UTC date.
type WeatherProvider interface {
	HourlySeries(ctx context.Context, at Coordinates, date string) (WeatherSeries, error)
}
