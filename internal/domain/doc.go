// Package domain models airport departure boards and the canonical flight
// record derived from them.
//
// # Data Sources
//
// Departure records come from seven airport sources. An upstream collector
// fetches each board (JSON APIs or scraped HTML tables), splits it into one
// record per flight, and publishes every record as JSON tagged with its source
// ID. The record shapes are kept as close to the upstream payloads as possible,
// so each source has its own raw struct:
//
//	mxp   Milano Malpensa      JSON API    Europe/Rome
//	nrt   Tokyo Narita         HTML table  Asia/Tokyo
//	rkv   Reykjavik            HTML table  Atlantic/Reykjavik
//	bog   Bogota El Dorado     JSON API    America/Bogota
//	mia   Miami International  HTML table  America/New_York
//	rpll  Manila NAIA          JSON API    Asia/Manila
//	ath   Athens International JSON API    Europe/Athens
//
// The zone and departure airport of a source are fixed constants. They are
// never derived from record data.
//
// # Time Conventions
//
// Sources publish local wall-clock times. Formats seen in the wild:
//
//	"2024-03-01 08:30"      date and clock joined by a space (mxp)
//	"2024-03-01 08:30:00"   same with seconds, which are dropped (bog, rpll)
//	"01/03/2024 08:30"      day first, slash delimited (ath)
//	"8:30 am", "(8:45 am)"  12-hour clock, parenthesised when updated (nrt)
//	"8:30A 03-01-24"        12-hour clock with A/P suffix and a US date (mia)
//
// Every local time is turned into an absolute instant by [AssembleTime] using
// the IANA rules of the source zone for that calendar date, so DST
// transitions are honoured.
//
// # Airport Codes
//
// Arrival airports arrive as free text ("Rome Fiumicino", "FRANKFURT"). They
// are mapped onto three-letter IATA codes by [ResolveIATA]. When no entry of
// the reference list matches, the upper-cased text with spaces removed is kept
// as a pseudo-code so the record is never dropped for a bad destination.
//
// # Deduplication
//
// Two records with the same scheduled departure, actual departure, departure
// airport and arrival airport describe the same flight. See [DedupKey].
//
// # Weather
//
// Weather is attached in a separate pass. Hourly archive samples (UTC) for the
// departure airport are linearly interpolated onto the scheduled departure
// minute by [EnrichWithWeather].
package domain
