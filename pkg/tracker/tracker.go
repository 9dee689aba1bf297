package tracker

import (
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/youssefjedidi/airport-operations-pipeline/pkg/model"
)

// Tracker turns independent snapshots of grounded aircraft into continuous
// per-aircraft dwell measurements, and decides which aircraft cross the
// ground-time threshold for the first time in their current streak.
type Tracker struct {
	logger           log.Logger
	thresholdMinutes int
}

func New(logger log.Logger, thresholdMinutes int) *Tracker {
	return &Tracker{
		logger:           log.With(logger, "component", "tracker"),
		thresholdMinutes: thresholdMinutes,
	}
}

// Process consumes one snapshot and updates state in place. It returns every
// grounded observation as a loggable record, plus the subset that crossed
// the threshold for the first time this streak. An empty snapshot is a
// no-op: state is left alone so a failed fetch can't clobber prior truth.
//
// Dwell is whole minutes since the tracker first saw the callsign on the
// ground, truncated toward zero. It is derived from the tracker's own run
// times, never from the feed's last-contact field, which can lag badly.
func (t *Tracker) Process(snapshot []model.Observation, now time.Time, state model.State) (loggable, toAlert []model.Record) {
	if len(snapshot) == 0 {
		return nil, nil
	}

	live := make(map[string]struct{}, len(snapshot))
	for _, obs := range snapshot {
		if !obs.OnGround {
			continue
		}
		callsign := strings.TrimSpace(obs.Callsign)
		if callsign == "" {
			continue
		}
		live[callsign] = struct{}{}

		entry, ok := state[callsign]
		if !ok {
			entry = model.TrackedAircraft{FirstSeen: now}
			state[callsign] = entry
		}
		dwell := int(now.Sub(entry.FirstSeen).Seconds()) / 60

		rec := model.Record{
			LoggedAt:        now,
			Callsign:        callsign,
			Airline:         "Unknown", // the feed carries no airline information
			OriginCountry:   obs.OriginCountry,
			LastContact:     obs.LastContact,
			MinutesOnGround: dwell,
		}
		loggable = append(loggable, rec)

		if dwell > t.thresholdMinutes && !entry.AlertSent {
			toAlert = append(toAlert, rec)
			entry.AlertSent = true
			state[callsign] = entry
		}
	}

	// An entry that didn't show up in this snapshot departed or dropped out
	// of the feed; its memory is reclaimed with no grace period. If the
	// aircraft reappears it starts a fresh streak and may alert again.
	evicted := 0
	for callsign := range state {
		if _, ok := live[callsign]; !ok {
			delete(state, callsign)
			evicted++
		}
	}
	if evicted > 0 {
		level.Debug(t.logger).Log("msg", "evicted departed aircraft", "count", evicted)
	}

	return loggable, toAlert
}
