package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	bolt "go.etcd.io/bbolt"

	"github.com/youssefjedidi/airport-operations-pipeline/pkg/model"
)

var bucketTracked = []byte("tracked")

// Store persists tracking state between invocations in a bolt file. One
// invocation owns the state for its whole duration: Load at the start, Save
// at the end. Saving rewrites the bucket inside a single write transaction,
// so the next run sees either the old state or the new one, never a mix.
// Concurrent invocations against the same file are not supported; the
// scheduler is expected to never overlap runs.
type Store struct {
	logger log.Logger
	path   string
}

func NewStore(logger log.Logger, path string) *Store {
	return &Store{
		logger: log.With(logger, "component", "store"),
		path:   path,
	}
}

// Load reads the persisted state. A missing file is the first run, not an
// error: it yields an empty state.
func (s *Store) Load() (model.State, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return model.State{}, nil
	}

	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	defer db.Close()

	state := model.State{}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTracked)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var entry model.TrackedAircraft
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode tracked aircraft %q: %w", k, err)
			}
			state[string(k)] = entry
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Save replaces the persisted state with the given one.
func (s *Store) Save(state model.State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketTracked) != nil {
			if err := tx.DeleteBucket(bucketTracked); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucketTracked)
		if err != nil {
			return err
		}
		for callsign, entry := range state {
			v, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(callsign), v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	level.Debug(s.logger).Log("msg", "tracking state saved", "entries", len(state))
	return nil
}
