package tracker

import (
	"testing"
	"time"

	"github.com/go-kit/kit/log"

	"github.com/youssefjedidi/airport-operations-pipeline/pkg/model"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func grounded(callsign string) model.Observation {
	return model.Observation{
		Callsign:      callsign,
		OriginCountry: "Canada",
		OnGround:      true,
		LastContact:   t0,
	}
}

func newTracker(threshold int) *Tracker {
	return New(log.NewNopLogger(), threshold)
}

func TestFirstDetectionDwellZeroNoAlert(t *testing.T) {
	tr := newTracker(60)
	state := model.State{}

	loggable, toAlert := tr.Process([]model.Observation{grounded("AC101")}, t0, state)

	if len(loggable) != 1 || len(toAlert) != 0 {
		t.Fatalf("got %d loggable, %d toAlert, want 1, 0", len(loggable), len(toAlert))
	}
	if loggable[0].MinutesOnGround != 0 {
		t.Errorf("first detection dwell = %d, want 0", loggable[0].MinutesOnGround)
	}
	entry, ok := state["AC101"]
	if !ok {
		t.Fatal("AC101 missing from state after first detection")
	}
	if !entry.FirstSeen.Equal(t0) || entry.AlertSent {
		t.Errorf("entry = %+v, want FirstSeen=%v AlertSent=false", entry, t0)
	}
}

func TestDwellIsFlooredMinutesFromFirstSeen(t *testing.T) {
	tr := newTracker(60)
	state := model.State{}
	snapshot := []model.Observation{grounded("AC101")}

	tr.Process(snapshot, t0, state)
	for _, tc := range []struct {
		elapsed time.Duration
		want    int
	}{
		{59 * time.Second, 0},
		{60 * time.Second, 1},
		{119 * time.Second, 1},
		{65 * time.Minute, 65},
		{65*time.Minute + 59*time.Second, 65},
	} {
		loggable, _ := tr.Process(snapshot, t0.Add(tc.elapsed), state)
		if loggable[0].MinutesOnGround != tc.want {
			t.Errorf("dwell after %v = %d, want %d", tc.elapsed, loggable[0].MinutesOnGround, tc.want)
		}
	}
}

func TestDwellIgnoresLastContact(t *testing.T) {
	tr := newTracker(60)
	state := model.State{}
	obs := grounded("AC101")
	obs.LastContact = t0.Add(-5 * time.Hour) // feed lagging badly

	loggable, toAlert := tr.Process([]model.Observation{obs}, t0, state)
	if loggable[0].MinutesOnGround != 0 {
		t.Errorf("dwell = %d, want 0 regardless of last contact", loggable[0].MinutesOnGround)
	}
	if len(toAlert) != 0 {
		t.Errorf("got %d alerts, want none", len(toAlert))
	}
	if !loggable[0].LastContact.Equal(obs.LastContact) {
		t.Errorf("record last contact = %v, want passthrough %v", loggable[0].LastContact, obs.LastContact)
	}
}

func TestThresholdComparisonIsStrict(t *testing.T) {
	tr := newTracker(60)
	state := model.State{}
	snapshot := []model.Observation{grounded("AC101")}

	tr.Process(snapshot, t0, state)

	// Exactly 60 minutes dwell must not alert.
	_, toAlert := tr.Process(snapshot, t0.Add(60*time.Minute), state)
	if len(toAlert) != 0 {
		t.Fatalf("alert at dwell == threshold, want none")
	}
	_, toAlert = tr.Process(snapshot, t0.Add(61*time.Minute), state)
	if len(toAlert) != 1 {
		t.Fatalf("got %d alerts at dwell 61, want 1", len(toAlert))
	}
}

func TestSingleAlertPerStreak(t *testing.T) {
	tr := newTracker(60)
	state := model.State{}
	snapshot := []model.Observation{grounded("AC101")}

	tr.Process(snapshot, t0, state)

	alerts := 0
	for _, elapsed := range []time.Duration{65 * time.Minute, 100 * time.Minute, 200 * time.Minute} {
		_, toAlert := tr.Process(snapshot, t0.Add(elapsed), state)
		alerts += len(toAlert)
	}
	if alerts != 1 {
		t.Errorf("got %d alerts across streak, want exactly 1", alerts)
	}
	if !state["AC101"].AlertSent {
		t.Error("AlertSent not persisted in state")
	}
}

func TestEvictionClearsMemoryAndAllowsRealert(t *testing.T) {
	tr := newTracker(60)
	state := model.State{}
	snapshot := []model.Observation{grounded("AC101")}

	tr.Process(snapshot, t0, state)
	_, toAlert := tr.Process(snapshot, t0.Add(65*time.Minute), state)
	if len(toAlert) != 1 {
		t.Fatalf("setup: expected initial alert")
	}

	// AC101 drops out of the feed: state is reclaimed unconditionally.
	tr.Process([]model.Observation{grounded("WJA202")}, t0.Add(70*time.Minute), state)
	if _, ok := state["AC101"]; ok {
		t.Fatal("AC101 still tracked after disappearing from snapshot")
	}

	// It reappears: fresh streak, dwell 0, and it may alert again later.
	loggable, toAlert := tr.Process(snapshot, t0.Add(200*time.Minute), state)
	if loggable[0].MinutesOnGround != 0 || len(toAlert) != 0 {
		t.Fatalf("reappearance: dwell=%d alerts=%d, want 0 and 0", loggable[0].MinutesOnGround, len(toAlert))
	}
	_, toAlert = tr.Process(snapshot, t0.Add(265*time.Minute), state)
	if len(toAlert) != 1 {
		t.Errorf("got %d alerts after re-crossing threshold, want 1", len(toAlert))
	}
}

func TestEmptySnapshotIsNoOp(t *testing.T) {
	tr := newTracker(60)
	state := model.State{
		"AC101": {FirstSeen: t0, AlertSent: true},
	}

	loggable, toAlert := tr.Process(nil, t0.Add(time.Hour), state)
	if len(loggable) != 0 || len(toAlert) != 0 {
		t.Errorf("got %d loggable, %d toAlert, want empty", len(loggable), len(toAlert))
	}
	if len(state) != 1 || !state["AC101"].AlertSent {
		t.Errorf("state mutated by empty snapshot: %+v", state)
	}
}

func TestSkipsAirborneAndBlankCallsigns(t *testing.T) {
	tr := newTracker(60)
	state := model.State{}
	airborne := grounded("WJA202")
	airborne.OnGround = false

	loggable, toAlert := tr.Process([]model.Observation{
		grounded("   "),
		grounded(""),
		airborne,
		grounded(" AC101 "),
	}, t0, state)

	if len(loggable) != 1 || len(toAlert) != 0 {
		t.Fatalf("got %d loggable, %d toAlert, want 1, 0", len(loggable), len(toAlert))
	}
	if loggable[0].Callsign != "AC101" {
		t.Errorf("callsign = %q, want trimmed %q", loggable[0].Callsign, "AC101")
	}
	if len(state) != 1 {
		t.Errorf("state holds %d entries, want 1: %+v", len(state), state)
	}
}

func TestLoggableKeepsInputOrderAndToAlertIsSubsequence(t *testing.T) {
	tr := newTracker(0)
	state := model.State{
		"AC101":  {FirstSeen: t0.Add(-10 * time.Minute)},
		"WJA202": {FirstSeen: t0.Add(-5 * time.Minute), AlertSent: true},
		"TSC303": {FirstSeen: t0.Add(-20 * time.Minute)},
	}

	loggable, toAlert := tr.Process([]model.Observation{
		grounded("TSC303"),
		grounded("WJA202"),
		grounded("AC101"),
	}, t0, state)

	wantOrder := []string{"TSC303", "WJA202", "AC101"}
	for i, cs := range wantOrder {
		if loggable[i].Callsign != cs {
			t.Fatalf("loggable[%d] = %q, want %q", i, loggable[i].Callsign, cs)
		}
	}
	wantAlerts := []string{"TSC303", "AC101"} // WJA202 already alerted
	if len(toAlert) != len(wantAlerts) {
		t.Fatalf("got %d alerts, want %d", len(toAlert), len(wantAlerts))
	}
	for i, cs := range wantAlerts {
		if toAlert[i].Callsign != cs {
			t.Errorf("toAlert[%d] = %q, want %q", i, toAlert[i].Callsign, cs)
		}
	}
}

// The five-run scenario: detect, alert once, stay silent, depart, reappear.
func TestFullScenario(t *testing.T) {
	tr := newTracker(60)
	state := model.State{}
	snapshot := []model.Observation{grounded("AC101")}

	loggable, toAlert := tr.Process(snapshot, t0, state)
	if loggable[0].MinutesOnGround != 0 || len(toAlert) != 0 {
		t.Fatalf("run1: dwell=%d alerts=%d", loggable[0].MinutesOnGround, len(toAlert))
	}

	loggable, toAlert = tr.Process(snapshot, t0.Add(65*time.Minute), state)
	if loggable[0].MinutesOnGround != 65 || len(toAlert) != 1 || toAlert[0].MinutesOnGround != 65 {
		t.Fatalf("run2: loggable=%+v toAlert=%+v", loggable, toAlert)
	}

	loggable, toAlert = tr.Process(snapshot, t0.Add(130*time.Minute), state)
	if loggable[0].MinutesOnGround != 130 || len(toAlert) != 0 {
		t.Fatalf("run3: loggable=%+v toAlert=%+v", loggable, toAlert)
	}

	tr.Process([]model.Observation{grounded("WJA202")}, t0.Add(150*time.Minute), state)
	if _, ok := state["AC101"]; ok {
		t.Fatal("run4: AC101 should have been evicted")
	}

	loggable, toAlert = tr.Process(snapshot, t0.Add(200*time.Minute), state)
	if loggable[0].MinutesOnGround != 0 || len(toAlert) != 0 {
		t.Fatalf("run5: dwell=%d alerts=%d, want fresh streak", loggable[0].MinutesOnGround, len(toAlert))
	}
}
