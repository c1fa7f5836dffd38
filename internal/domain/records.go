package domain

import (
	"fmt"
	"strings"
)

// MXPRecord is one departure from the Malpensa operative flights API.
type MXPRecord struct {
	FlightNumber  string       `json:"flightNumber"`
	Status        string       `json:"statusPubblicDescription"`
	ScheduledTime string       `json:"scheduledTime"` // "2024-03-01 08:30"
	ActualTime    *string      `json:"actualTime"`    // same format, null until departed
	Routing       []MXPRouting `json:"routing"`       // [0] origin, [1] destination
}

// MXPRouting is one leg endpoint of a Malpensa record.
type MXPRouting struct {
	AirportDescription string `json:"airportDescription"`
}

func (r MXPRecord) Source() SourceID { return SourceMXP }

func (r MXPRecord) extract() (sourceFields, bool, error) {
	if len(r.Routing) < 2 {
		return sourceFields{}, false, fmt.Errorf("%w: mxp routing has %d entries", ErrMalformedRecord, len(r.Routing))
	}
	// The feed also lists legs that only call at Malpensa. An unnamed origin
	// is taken to be Malpensa.
	if origin := r.Routing[0].AirportDescription; origin != "" && !strings.Contains(strings.ToLower(origin), "malpensa") {
		return sourceFields{}, false, nil
	}
	date, sched, err := splitDateTime(r.ScheduledTime)
	if err != nil {
		return sourceFields{}, false, err
	}
	f := sourceFields{
		Number:      r.FlightNumber,
		Status:      r.Status,
		Date:        date,
		Scheduled:   sched,
		Destination: r.Routing[1].AirportDescription,
	}
	if r.ActualTime != nil && strings.TrimSpace(*r.ActualTime) != "" {
		_, act, err := splitDateTime(*r.ActualTime)
		if err != nil {
			return sourceFields{}, false, err
		}
		f.Actual = act
	}
	return f, true, nil
}

// NRTRecord is one row of the Narita departures table.
type NRTRecord struct {
	Date        string `json:"date"`      // board date, "2024-03-01"
	Scheduled   string `json:"scheduled"` // "8:30 am"
	Updated     string `json:"updated"`   // "(8:45 am)", empty when on schedule
	Destination string `json:"destination"`
	Status      string `json:"status"`
	Number      string `json:"number"`
}

func (r NRTRecord) Source() SourceID { return SourceNRT }

func (r NRTRecord) extract() (sourceFields, bool, error) {
	sched, err := To24h(r.Scheduled)
	if err != nil {
		return sourceFields{}, false, err
	}
	f := sourceFields{
		Number:      r.Number,
		Status:      r.Status,
		Date:        r.Date,
		Scheduled:   sched,
		Destination: r.Destination,
	}
	switch {
	case strings.TrimSpace(r.Updated) != "":
		act, err := To24h(r.Updated)
		if err != nil {
			return sourceFields{}, false, err
		}
		f.Actual = act
	case strings.Contains(strings.ToLower(r.Status), "departed"):
		// Narita leaves the updated cell blank for on-time departures.
		f.Actual = sched
	}
	return f, true, nil
}

// RKVRecord is one row of the Reykjavik departures table.
type RKVRecord struct {
	Date        string `json:"date"`      // board date, "2024-03-01"
	Scheduled   string `json:"scheduled"` // "08:30"
	Number      string `json:"number"`
	Destination string `json:"destination"`
	Remark      string `json:"remark"` // "Departed 08:45", "Cancelled", "Boarding"
}

func (r RKVRecord) Source() SourceID { return SourceRKV }

func (r RKVRecord) extract() (sourceFields, bool, error) {
	f := sourceFields{
		Number:      r.Number,
		Date:        r.Date,
		Scheduled:   strings.TrimSpace(r.Scheduled),
		Destination: r.Destination,
		Status:      r.Remark,
	}
	remark := strings.ToLower(r.Remark)
	switch {
	case strings.Contains(remark, "departed"):
		parts := strings.Fields(r.Remark)
		if len(parts) < 2 {
			return sourceFields{}, false, fmt.Errorf("%w: rkv remark %q has no time", ErrInvalidTimeFormat, r.Remark)
		}
		f.Status = "DEPARTED"
		f.Actual = parts[1]
	case strings.Contains(remark, "cancelled"):
		f.Status = "CANCELLED"
	}
	return f, true, nil
}

// BOGRecord is one departure from the El Dorado flights API.
type BOGRecord struct {
	Number       string     `json:"number"`
	Airline      BOGAirline `json:"airline"`
	Status       BOGStatus  `json:"status"`
	ScheduleDate string     `json:"scheduleDate"` // "2024-03-01 08:30:00"
	ActualDate   string     `json:"actualDate"`
	City         BOGCity    `json:"city"`
}

// BOGAirline carries the carrier code of a Bogota record.
type BOGAirline struct {
	Code string `json:"code"`
}

// BOGStatus carries the localized status labels of a Bogota record.
type BOGStatus struct {
	EN string `json:"en"`
}

// BOGCity carries the destination of a Bogota record.
type BOGCity struct {
	CityName string `json:"cityName"`
}

func (r BOGRecord) Source() SourceID { return SourceBOG }

func (r BOGRecord) extract() (sourceFields, bool, error) {
	date, sched, err := splitDateTime(r.ScheduleDate)
	if err != nil {
		return sourceFields{}, false, err
	}
	f := sourceFields{
		Number:      r.Airline.Code + r.Number,
		Status:      r.Status.EN,
		Date:        date,
		Scheduled:   sched,
		Destination: r.City.CityName,
	}
	if strings.TrimSpace(r.ActualDate) != "" {
		_, act, err := splitDateTime(r.ActualDate)
		if err != nil {
			return sourceFields{}, false, err
		}
		f.Actual = act
	}
	return f, true, nil
}

// MIARecord is one row of the Miami departures table.
type MIARecord struct {
	Airline      string `json:"airline"` // "American Airlines"
	FlightNumber string `json:"flightNumber"`
	Destination  string `json:"destination"`
	Scheduled    string `json:"scheduled"` // "8:30A 03-01-24", separated by a space or NBSP
	Status       string `json:"status"`    // "Departed 8:45A", "Cancelled", "On Time"
}

func (r MIARecord) Source() SourceID { return SourceMIA }

func (r MIARecord) extract() (sourceFields, bool, error) {
	parts := strings.Fields(r.Scheduled)
	if len(parts) != 2 {
		return sourceFields{}, false, fmt.Errorf("%w: mia scheduled %q", ErrInvalidTimeFormat, r.Scheduled)
	}
	sched, err := To24h(parts[0])
	if err != nil {
		return sourceFields{}, false, err
	}
	date, err := reorderUSShort(parts[1])
	if err != nil {
		return sourceFields{}, false, err
	}

	f := sourceFields{
		Number:      airlinePrefix(r.Airline) + r.FlightNumber,
		Date:        date,
		Scheduled:   sched,
		Destination: r.Destination,
	}
	status := strings.Fields(r.Status)
	if len(status) > 0 {
		f.Status = status[0]
	}
	if strings.Contains(strings.ToLower(f.Status), "departed") {
		if len(status) < 2 {
			return sourceFields{}, false, fmt.Errorf("%w: mia status %q has no time", ErrInvalidTimeFormat, r.Status)
		}
		act, err := To24h(status[1])
		if err != nil {
			return sourceFields{}, false, err
		}
		f.Actual = act
	}
	return f, true, nil
}

// airlinePrefix derives a two-letter carrier prefix from an airline name:
// initials of the first two words, or the first two letters of a single word.
func airlinePrefix(name string) string {
	words := strings.Fields(name)
	switch {
	case len(words) > 1:
		return strings.ToUpper(words[0][:1] + words[1][:1])
	case len(words) == 1 && len(words[0]) >= 2:
		return strings.ToUpper(words[0][:2])
	case len(words) == 1:
		return strings.ToUpper(words[0])
	default:
		return ""
	}
}

// RPLLRecord is one departure from the Manila flight feed.
type RPLLRecord struct {
	AirlineCode  string `json:"Airline_Code"`
	FlightNumber string `json:"Flight_Number"`
	Status       string `json:"Status"`
	StaStd       string `json:"StaStd"` // "2024-03-01 08:30:00"
	AtaAtd       string `json:"AtaAtd"` // empty until the flight is resolved
	Destination  string `json:"Destination"`
}

func (r RPLLRecord) Source() SourceID { return SourceRPLL }

func (r RPLLRecord) extract() (sourceFields, bool, error) {
	if strings.TrimSpace(r.AtaAtd) == "" {
		return sourceFields{}, false, nil
	}
	date, sched, err := splitDateTime(r.StaStd)
	if err != nil {
		return sourceFields{}, false, err
	}
	_, act, err := splitDateTime(r.AtaAtd)
	if err != nil {
		return sourceFields{}, false, err
	}
	return sourceFields{
		Number:      r.AirlineCode + r.FlightNumber,
		Status:      r.Status,
		Date:        date,
		Scheduled:   sched,
		Actual:      act,
		Destination: r.Destination,
	}, true, nil
}

// ATHRecord is one departure from the Athens real-time flight feed.
type ATHRecord struct {
	FlightNo        string `json:"FlightNo"`
	FlightStateName string `json:"FlightStateName"`
	ScheduledTime   string `json:"ScheduledTime"` // "01/03/2024 08:30"
	ActualTime      string `json:"ActualTime"`    // "08:45" or empty
	AirportName     string `json:"AirportName"`
}

func (r ATHRecord) Source() SourceID { return SourceATH }

func (r ATHRecord) extract() (sourceFields, bool, error) {
	parts := strings.Fields(r.ScheduledTime)
	if len(parts) != 2 {
		return sourceFields{}, false, fmt.Errorf("%w: ath scheduled %q", ErrInvalidTimeFormat, r.ScheduledTime)
	}
	date, err := reorderDayFirst(parts[0])
	if err != nil {
		return sourceFields{}, false, err
	}
	return sourceFields{
		Number:      strings.ToUpper(r.FlightNo),
		Status:      r.FlightStateName,
		Date:        date,
		Scheduled:   parts[1],
		Actual:      strings.TrimSpace(r.ActualTime),
		Destination: r.AirportName,
	}, true, nil
}
