package cfg

import (
	"flag"
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"

	"github.com/youssefjedidi/airport-operations-pipeline/pkg/alert"
	"github.com/youssefjedidi/airport-operations-pipeline/pkg/opensky"
)

type Config struct {
	AirportIATA      string         `yaml:"airport_iata"`
	AirportName      string         `yaml:"airport_name"`
	ThresholdMinutes int            `yaml:"threshold_minutes"`
	StatePath        string         `yaml:"state_path"`
	LogPath          string         `yaml:"log_path"`
	ReportPath       string         `yaml:"report_path"`
	OpenSky          opensky.Config `yaml:"opensky,omitempty"`
	Alert            alert.Config   `yaml:"alert,omitempty"`
}

func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&c.AirportIATA, "airport.iata", "YUL", "IATA code of the monitored airport, display only")
	f.StringVar(&c.AirportName, "airport.name", "Montréal-Trudeau International Airport", "Name of the monitored airport, display only")
	f.IntVar(&c.ThresholdMinutes, "threshold-minutes", 60, "Ground time in minutes above which an aircraft is flagged")
	f.StringVar(&c.StatePath, "state.path", "data/state/tracking.db", "Where the cross-run tracking state is persisted")
	f.StringVar(&c.LogPath, "log.path", "data/logs/turnaround_log.csv", "Where grounded-aircraft observations are appended")
	f.StringVar(&c.ReportPath, "report.path", "data/reports/daily_turnaround_analysis.pdf", "Where the reporter writes its chart")
	c.OpenSky.RegisterFlags(f)
	c.Alert.RegisterFlags(f)
}

// LoadFile overlays values from a yaml file onto the config. Flags parsed
// after this call win over file values.
func (c *Config) LoadFile(path string) error {
	bts, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(bts, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
