package model

import "time"

// Observation is a single aircraft state vector reduced to the fields the
// monitor cares about. One snapshot yields one Observation per aircraft.
type Observation struct {
	ICAO24        string
	Callsign      string
	OriginCountry string
	OnGround      bool
	LastContact   time.Time
}

// Record is one row of the turnaround log. The csv tags fix the column set;
// the header is written once when the log file is first created.
type Record struct {
	LoggedAt        time.Time `csv:"log_timestamp_utc"`
	Callsign        string    `csv:"flight_iata"`
	Airline         string    `csv:"airline"`
	OriginCountry   string    `csv:"origin_country"`
	LastContact     time.Time `csv:"last_contact_time_utc"`
	MinutesOnGround int       `csv:"minutes_on_ground"`
}

// TrackedAircraft is the persisted per-aircraft tracking entry. FirstSeen is
// the run time at which the callsign was first observed on the ground in the
// current unbroken streak. AlertSent only moves false to true; it resets by
// the entry being evicted and later re-created.
type TrackedAircraft struct {
	FirstSeen time.Time `json:"first_seen"`
	AlertSent bool      `json:"alert_sent"`
}

// State maps callsign to its tracking entry. A callsign is present if and
// only if it was observed on the ground in the most recent processed
// snapshot.
type State map[string]TrackedAircraft
