package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	prommodel "github.com/prometheus/common/model"

	"github.com/youssefjedidi/airport-operations-pipeline/pkg/model"
)

type Config struct {
	WebhookURL string             `yaml:"webhook_url"`
	Timeout    prommodel.Duration `yaml:"timeout"`
}

func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&c.WebhookURL, "alert.webhook-url", os.Getenv("SLACK_WEBHOOK_URL"), "Slack incoming webhook URL, defaults to $SLACK_WEBHOOK_URL")
	c.Timeout = prommodel.Duration(10 * time.Second)
	f.Var(&c.Timeout, "alert.timeout", "HTTP timeout for alert delivery")
}

// Notifier delivers flagged-aircraft alerts to a Slack incoming webhook.
// Delivery is best effort: the caller logs failures and carries on, and a
// failed send is not retried on later runs.
type Notifier struct {
	logger           log.Logger
	config           Config
	airportName      string
	airportIATA      string
	thresholdMinutes int
	http             *http.Client
}

func NewNotifier(logger log.Logger, config Config, airportName, airportIATA string, thresholdMinutes int) *Notifier {
	return &Notifier{
		logger:           log.With(logger, "component", "alert"),
		config:           config,
		airportName:      airportName,
		airportIATA:      airportIATA,
		thresholdMinutes: thresholdMinutes,
		http:             &http.Client{Timeout: time.Duration(config.Timeout)},
	}
}

// Send posts one message summarizing all flagged aircraft. An empty slice
// sends nothing.
func (n *Notifier) Send(ctx context.Context, flagged []model.Record) error {
	if len(flagged) == 0 {
		return nil
	}
	if n.config.WebhookURL == "" {
		level.Warn(n.logger).Log("msg", "no webhook configured, alert not delivered", "flagged", len(flagged))
		return nil
	}

	payload, err := json.Marshal(map[string]string{"text": n.Message(flagged)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	level.Info(n.logger).Log("msg", "alert delivered", "flagged", len(flagged))
	return nil
}

// Message formats the outbound notification: a warning header with the
// count, airport and threshold, then one block per flagged aircraft.
func (n *Notifier) Message(flagged []model.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":warning: *Alert: %d flights at %s (%s) have been on the ground for over %d minutes!* :warning:\n\nHere are the details:",
		len(flagged), n.airportName, n.airportIATA, n.thresholdMinutes)
	for _, rec := range flagged {
		fmt.Fprintf(&b, "\n\n*- Flight %s* (%s)\n  - Arrived from: %s\n  - On ground for: *%d minutes*",
			rec.Callsign, rec.Airline, rec.OriginCountry, rec.MinutesOnGround)
	}
	return b.String()
}
