package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/prometheus/common/version"

	"github.com/youssefjedidi/airport-operations-pipeline/pkg/cfg"
	"github.com/youssefjedidi/airport-operations-pipeline/pkg/report"
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

// The reporter is the offline companion to the monitor: it reads the
// accumulated turnaround log and writes summary statistics plus a ranked
// chart of the longest ground times.
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
		fs.Parse(os.Args[1:])
	}
	if config.printVersion {
		fmt.Println(version.Print("airport-operations-reporter"))
		os.Exit(0)
	}

	var logger log.Logger
	logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestamp, "caller", log.DefaultCaller)

	level.Info(logger).Log("msg", "starting airport operations reporter", "airport", config.AirportIATA)

	engine := report.NewEngine(logger, config.AirportName)
	if err := engine.Run(config.LogPath, config.ReportPath); err != nil {
		level.Error(logger).Log("msg", "reporter run failed", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "reporter run finished")
}
