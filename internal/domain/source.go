package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SourceID tags the airport source a raw record came from.
type SourceID string

const (
	SourceMXP  SourceID = "mxp"
	SourceNRT  SourceID = "nrt"
	SourceRKV  SourceID = "rkv"
	SourceBOG  SourceID = "bog"
	SourceMIA  SourceID = "mia"
	SourceRPLL SourceID = "rpll"
	SourceATH  SourceID = "ath"
)

var (
	// ErrUnknownSource means a record carries a source tag with no configuration.
	ErrUnknownSource = errors.New("unknown source")

	// ErrMalformedRecord means a record lacks a field every record of its source must carry.
	ErrMalformedRecord = errors.New("malformed source record")
)

// SourceConfig holds the per-source constants used by Normalize.
type SourceConfig struct {
	ID       SourceID
	Airport  string // departure IATA code
	TimeZone string // IANA zone of the published local times
}

var sourceConfigs = map[SourceID]SourceConfig{
	SourceMXP:  {ID: SourceMXP, Airport: "MXP", TimeZone: "Europe/Rome"},
	SourceNRT:  {ID: SourceNRT, Airport: "NRT", TimeZone: "Asia/Tokyo"},
	SourceRKV:  {ID: SourceRKV, Airport: "RKV", TimeZone: "Atlantic/Reykjavik"},
	SourceBOG:  {ID: SourceBOG, Airport: "BOG", TimeZone: "America/Bogota"},
	SourceMIA:  {ID: SourceMIA, Airport: "MIA", TimeZone: "America/New_York"},
	SourceRPLL: {ID: SourceRPLL, Airport: "MNL", TimeZone: "Asia/Manila"},
	SourceATH:  {ID: SourceATH, Airport: "ATH", TimeZone: "Europe/Athens"},
}

// Sources lists every configured source in a stable order.
func Sources() []SourceID {
	return []SourceID{SourceMXP, SourceNRT, SourceRKV, SourceBOG, SourceMIA, SourceRPLL, SourceATH}
}

// SourceConfigFor returns the configuration of a source.
func SourceConfigFor(id SourceID) (SourceConfig, bool) {
	cfg, ok := sourceConfigs[id]
	return cfg, ok
}

// ParseSourceID validates a source tag taken from a message header.
func ParseSourceID(s string) (SourceID, error) {
	id := SourceID(s)
	if _, ok := sourceConfigs[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
	return id, nil
}

// RawFlight is a decoded source record. The set of implementations is closed;
// DecodeRawFlight is the only constructor from wire payloads.
type RawFlight interface {
	Source() SourceID
	extract() (sourceFields, bool, error)
}

// sourceFields is what every source reduces to before normalization.
type sourceFields struct {
	Number      string
	Status      string
	Date        string // local YYYY-MM-DD
	Scheduled   string // local HH:MM
	Actual      string // local HH:MM, empty when the flight has not left
	Destination string
}

// DecodeRawFlight unmarshals a JSON payload into the record type of source.
func DecodeRawFlight(source SourceID, payload []byte) (RawFlight, error) {
	var rec RawFlight
	switch source {
	case SourceMXP:
		rec = &MXPRecord{}
	case SourceNRT:
		rec = &NRTRecord{}
	case SourceRKV:
		rec = &RKVRecord{}
	case SourceBOG:
		rec = &BOGRecord{}
	case SourceMIA:
		rec = &MIARecord{}
	case SourceRPLL:
		rec = &RPLLRecord{}
	case SourceATH:
		rec = &ATHRecord{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	if err := json.Unmarshal(payload, rec); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", source, err)
	}
	return rec, nil
}
