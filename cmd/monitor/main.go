package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/prometheus/common/version"

	"github.com/youssefjedidi/airport-operations-pipeline/pkg/alert"
	"github.com/youssefjedidi/airport-operations-pipeline/pkg/cfg"
	"github.com/youssefjedidi/airport-operations-pipeline/pkg/monitor"
	"github.com/youssefjedidi/airport-operations-pipeline/pkg/obslog"
	"github.com/youssefjedidi/airport-operations-pipeline/pkg/opensky"
	"github.com/youssefjedidi/airport-operations-pipeline/pkg/tracker"
)

type Config struct {
	cfg.Config   `yaml:",inline"`
	printVersion bool
	configFile   string
}

func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.BoolVar(&c.printVersion, "version", false, "Print this builds version information")
	f.StringVar(&c.configFile, "config.file", "", "yaml file to load")
	c.Config.RegisterFlags(f)
}

// The monitor is a one-shot process: an external scheduler (cron or similar)
// invokes it periodically, and runs are assumed never to overlap. Each
// invocation loads the tracking state, processes one snapshot and saves the
// state back.
func main() {
	var config Config
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	config.RegisterFlags(fs)
	fs.Parse(os.Args[1:])
	if config.configFile != "" {
		if err := config.LoadFile(config.configFile); err != nil {
			fmt.Fprintf(os.Stderr, "failed parsing config: %v\n", err)
			os.Exit(1)
		}
		// Reparse so flags win over file values.
		fs.Parse(os.Args[1:])
	}
	if config.printVersion {
		fmt.Println(version.Print("airport-operations-monitor"))
		os.Exit(0)
	}

	var logger log.Logger
	logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestamp, "caller", log.DefaultCaller)

	level.Info(logger).Log("msg", "starting airport operations monitor",
		"airport", config.AirportIATA, "threshold_minutes", config.ThresholdMinutes)

	m := monitor.New(logger,
		opensky.New(logger, config.OpenSky),
		tracker.New(logger, config.ThresholdMinutes),
		tracker.NewStore(logger, config.StatePath),
		obslog.NewSink(logger, config.LogPath),
		alert.NewNotifier(logger, config.Alert, config.AirportName, config.AirportIATA, config.ThresholdMinutes),
	)

	if err := m.Run(context.Background()); err != nil {
		level.Error(logger).Log("msg", "monitor run failed", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "monitor run finished")
}
