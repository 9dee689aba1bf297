package opensky

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	prommodel "github.com/prometheus/common/model"

	"github.com/youssefjedidi/airport-operations-pipeline/pkg/model"
)

// OpenSky /states/all indices we consume. States are positional,
// heterogeneously typed JSON arrays.
const (
	idxICAO24        = 0
	idxCallsign      = 1
	idxOriginCountry = 2
	idxLastContact   = 4
	idxOnGround      = 8
)

type Config struct {
	URL     string             `yaml:"url"`
	LatMin  float64            `yaml:"lat_min"`
	LatMax  float64            `yaml:"lat_max"`
	LonMin  float64            `yaml:"lon_min"`
	LonMax  float64            `yaml:"lon_max"`
	Timeout prommodel.Duration `yaml:"timeout"`
}

func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&c.URL, "opensky.url", "https://opensky-network.org/api/states/all", "OpenSky states endpoint")
	f.Float64Var(&c.LatMin, "opensky.lat-min", 45.3, "Bounding box minimum latitude")
	f.Float64Var(&c.LatMax, "opensky.lat-max", 45.7, "Bounding box maximum latitude")
	f.Float64Var(&c.LonMin, "opensky.lon-min", -74.1, "Bounding box minimum longitude")
	f.Float64Var(&c.LonMax, "opensky.lon-max", -73.5, "Bounding box maximum longitude")
	c.Timeout = prommodel.Duration(15 * time.Second)
	f.Var(&c.Timeout, "opensky.timeout", "HTTP timeout for the states fetch")
}

// Client fetches aircraft state vectors within the configured bounding box.
type Client struct {
	logger log.Logger
	config Config
	http   *http.Client
}

func New(logger log.Logger, config Config) *Client {
	return &Client{
		logger: log.With(logger, "component", "opensky"),
		config: config,
		http:   &http.Client{Timeout: time.Duration(config.Timeout)},
	}
}

type statesResponse struct {
	Time   int64             `json:"time"`
	States []json.RawMessage `json:"states"`
}

// Fetch returns the current observations inside the bounding box. Any
// transport or decode failure returns an empty slice alongside the error so
// the caller can treat the run as having seen nothing.
func (c *Client) Fetch(ctx context.Context) ([]model.Observation, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return nil, fmt.Errorf("parse opensky url: %w", err)
	}
	q := u.Query()
	q.Set("lamin", strconv.FormatFloat(c.config.LatMin, 'f', -1, 64))
	q.Set("lamax", strconv.FormatFloat(c.config.LatMax, 'f', -1, 64))
	q.Set("lomin", strconv.FormatFloat(c.config.LonMin, 'f', -1, 64))
	q.Set("lomax", strconv.FormatFloat(c.config.LonMax, 'f', -1, 64))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opensky returned status %d", resp.StatusCode)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var states statesResponse
	if err := json.Unmarshal(body, &states); err != nil {
		return nil, fmt.Errorf("decode opensky response: %w", err)
	}

	observations := make([]model.Observation, 0, len(states.States))
	for _, raw := range states.States {
		obs, ok := c.parseState(raw)
		if !ok {
			continue
		}
		observations = append(observations, obs)
	}
	level.Debug(c.logger).Log("msg", "fetched state vectors", "aircraft", len(observations))
	return observations, nil
}

// parseState decodes one positional state vector. Cells can be null or
// carry an unexpected type; anything we can't read degrades to a zero value
// rather than failing the whole snapshot.
func (c *Client) parseState(raw json.RawMessage) (model.Observation, bool) {
	var cells []interface{}
	if err := json.Unmarshal(raw, &cells); err != nil {
		level.Warn(c.logger).Log("msg", "skipping undecodable state vector", "err", err)
		return model.Observation{}, false
	}

	obs := model.Observation{
		ICAO24:        stringCell(cells, idxICAO24),
		Callsign:      stringCell(cells, idxCallsign),
		OriginCountry: stringCell(cells, idxOriginCountry),
		OnGround:      boolCell(cells, idxOnGround),
	}
	if obs.OriginCountry == "" {
		obs.OriginCountry = "N/A"
	}
	if secs, ok := numberCell(cells, idxLastContact); ok {
		obs.LastContact = time.Unix(int64(secs), 0).UTC()
	}
	return obs, true
}

func stringCell(cells []interface{}, i int) string {
	if i >= len(cells) {
		return ""
	}
	s, _ := cells[i].(string)
	return s
}

func boolCell(cells []interface{}, i int) bool {
	if i >= len(cells) {
		return false
	}
	b, _ := cells[i].(bool)
	return b
}

func numberCell(cells []interface{}, i int) (float64, bool) {
	if i >= len(cells) {
		return 0, false
	}
	n, ok := cells[i].(float64)
	return n, ok
}
