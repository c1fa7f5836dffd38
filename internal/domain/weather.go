package domain

import (
	"math"
	"time"
)

// WeatherSeries holds hourly samples for one airport and one UTC date. The
// measure slices are parallel to Times; a nil entry is a missing sample.
type WeatherSeries struct {
	Times         []time.Time
	Precipitation []*float64 // mm
	CloudCover    []*float64 // %
	WindSpeed10m  []*float64 // km/h
	WindSpeed100m []*float64 // km/h
}

// indexOf returns the position of the sample taken exactly at hour, or -1.
func (s WeatherSeries) indexOf(hour time.Time) int {
	for i, t := range s.Times {
		if t.Equal(hour) {
			return i
		}
	}
	return -1
}

// EnrichWithWeather interpolates the series onto the flight's scheduled
// departure minute and returns the augmented copy. The bool reports whether
// any measure was set. Flights that already carry every measure, or whose
// departure hour is not in the series, are returned unchanged.
func EnrichWithWeather(f Flight, s WeatherSeries) (Flight, bool) {
	if f.HasWeather() {
		return f, false
	}

	at := f.ScheduledDep.UTC()
	hour := at.Truncate(time.Hour)
	idx := s.indexOf(hour)
	if idx < 0 {
		return f, false
	}
	fraction := float64(at.Minute()) / 60

	out := f
	measures := []struct {
		samples []*float64
		dst     **float64
	}{
		{s.Precipitation, &out.Precipitation},
		{s.CloudCover, &out.CloudCover},
		{s.WindSpeed10m, &out.WindSpeed10m},
		{s.WindSpeed100m, &out.WindSpeed100m},
	}

	changed := false
	for _, m := range measures {
		if v, ok := interpolate(m.samples, idx, fraction); ok {
			*m.dst = &v
			changed = true
		}
	}
	return out, changed
}

// interpolate blends samples[idx] and samples[idx+1] by fraction. On the
// hour, and at the last sample of a series, the current sample is used
// verbatim. A missing current sample yields no value.
func interpolate(samples []*float64, idx int, fraction float64) (float64, bool) {
	if idx >= len(samples) || samples[idx] == nil {
		return 0, false
	}
	cur := *samples[idx]
	if fraction == 0 || idx == len(samples)-1 {
		return cur, true
	}
	next := samples[idx+1]
	if next == nil {
		return 0, false
	}
	return roundTo(cur*(1-fraction)+*next*fraction, 4), true
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
