package store

import (
	"time"

	"github.com/couchcryptid/flight-delay-etl/internal/domain"
)

type flightRow struct {
	ID            string     `gorm:"primaryKey;size:36"`
	Source        string     `gorm:"size:8;not null"`
	Number        string     `gorm:"size:32"`
	Status        string     `gorm:"size:64"`
	ScheduledDep  time.Time  `gorm:"not null;index:idx_flights_key"`
	ActualDep     *time.Time `gorm:"index:idx_flights_key"`
	AirportDep    string     `gorm:"size:16;not null;index:idx_flights_key"`
	AirportArr    string     `gorm:"not null;index:idx_flights_key"`
	Precipitation *float64
	CloudCover    *float64
	WindSpeed10m  *float64 `gorm:"column:wind_speed_10m"`
	WindSpeed100m *float64 `gorm:"column:wind_speed_100m"`
	IngestedAt    time.Time
}

func (flightRow) TableName() string { return "flights" }

type iataRow struct {
	Seq     uint   `gorm:"primaryKey;autoIncrement"`
	Acronym string `gorm:"size:8;not null;uniqueIndex"`
	Name    string `gorm:"not null"`
}

func (iataRow) TableName() string { return "iata" }

func toRow(f domain.Flight) flightRow {
	r := flightRow{
		ID:            f.ID,
		Source:        string(f.Source),
		Number:        f.Number,
		Status:        f.Status,
		ScheduledDep:  f.ScheduledDep.UTC(),
		AirportDep:    f.AirportDep,
		AirportArr:    f.AirportArr,
		Precipitation: f.Precipitation,
		CloudCover:    f.CloudCover,
		WindSpeed10m:  f.WindSpeed10m,
		WindSpeed100m: f.WindSpeed100m,
		IngestedAt:    f.IngestedAt.UTC(),
	}
	if f.ActualDep != nil {
		a := f.ActualDep.UTC()
		r.ActualDep = &a
	}
	return r
}

func (r flightRow) toDomain() domain.Flight {
	f := domain.Flight{
		ID:            r.ID,
		Source:        domain.SourceID(r.Source),
		Number:        r.Number,
		Status:        r.Status,
		ScheduledDep:  r.ScheduledDep.UTC(),
		AirportDep:    r.AirportDep,
		AirportArr:    r.AirportArr,
		Precipitation: r.Precipitation,
		CloudCover:    r.CloudCover,
		WindSpeed10m:  r.WindSpeed10m,
		WindSpeed100m: r.WindSpeed100m,
		IngestedAt:    r.IngestedAt.UTC(),
	}
	if r.ActualDep != nil {
		a := r.ActualDep.UTC()
		f.ActualDep = &a
	}
	return f
}
