package obslog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/gocarina/gocsv"

	"github.com/youssefjedidi/airport-operations-pipeline/pkg/model"
)

// Sink appends per-run observation records to a CSV log. The header row is
// written exactly once, when the file is first created; every later run only
// appends rows.
type Sink struct {
	logger log.Logger
	path   string
}

func NewSink(logger log.Logger, path string) *Sink {
	return &Sink{
		logger: log.With(logger, "component", "obslog"),
		path:   path,
	}
}

func (s *Sink) Append(records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	_, statErr := os.Stat(s.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open observation log: %w", err)
	}

	if writeHeader {
		err = gocsv.Marshal(&records, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(&records, f)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("write observation log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close observation log: %w", err)
	}

	level.Info(s.logger).Log("msg", "logged observations", "records", len(records), "path", s.path)
	return nil
}
