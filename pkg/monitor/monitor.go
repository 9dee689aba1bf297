package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/youssefjedidi/airport-operations-pipeline/pkg/model"
	"github.com/youssefjedidi/airport-operations-pipeline/pkg/tracker"
)

// Source supplies the current snapshot of aircraft observations.
type Source interface {
	Fetch(ctx context.Context) ([]model.Observation, error)
}

// Store persists tracking state across invocations.
type Store interface {
	Load() (model.State, error)
	Save(model.State) error
}

// Sink appends loggable records to the observation log.
type Sink interface {
	Append([]model.Record) error
}

// Notifier delivers alerts for newly flagged aircraft.
type Notifier interface {
	Send(ctx context.Context, flagged []model.Record) error
}

// Monitor wires one invocation together: fetch a snapshot, load state, run
// the tracker, log observations, deliver alerts, save state.
type Monitor struct {
	logger   log.Logger
	source   Source
	tracker  *tracker.Tracker
	store    Store
	sink     Sink
	notifier Notifier
}

func New(logger log.Logger, source Source, t *tracker.Tracker, store Store, sink Sink, notifier Notifier) *Monitor {
	return &Monitor{
		logger:   log.With(logger, "component", "monitor"),
		source:   source,
		tracker:  t,
		store:    store,
		sink:     sink,
		notifier: notifier,
	}
}

// Run executes one invocation. A fetch failure degrades to an empty snapshot
// so prior state survives untouched. Persistence failures are fatal: they
// risk divergence between remembered state and reality on the next run.
// Alert delivery failures are logged and swallowed; the aircraft stays
// marked as alerted either way.
func (m *Monitor) Run(ctx context.Context) error {
	observations, err := m.source.Fetch(ctx)
	if err != nil {
		level.Error(m.logger).Log("msg", "could not fetch flight data, treating run as empty", "err", err)
		observations = nil
	}

	state, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("load tracking state: %w", err)
	}

	now := time.Now().UTC()
	loggable, toAlert := m.tracker.Process(observations, now, state)

	if err := m.sink.Append(loggable); err != nil {
		return fmt.Errorf("append observation log: %w", err)
	}

	if err := m.notifier.Send(ctx, toAlert); err != nil {
		level.Error(m.logger).Log("msg", "could not deliver alert", "err", err)
	}

	if err := m.store.Save(state); err != nil {
		return fmt.Errorf("save tracking state: %w", err)
	}

	level.Info(m.logger).Log("msg", "run complete",
		"seen", len(observations), "grounded", len(loggable), "flagged", len(toAlert))
	return nil
}
