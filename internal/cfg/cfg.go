package cfg

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

const (
	maxRateLimitBurst   = 10000
	maxSimulatedLatency = 30 * time.Second
)

// Config adds app-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	RulebookPath          string
	APIToken              string
	RateLimitRPS          float64
	RateLimitBurst        int
	SimulatedLatency      time.Duration
	SlackWebhookURL       string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.RulebookPath, "rulebook", "", "YAML file extending the built-in marker vocabulary (empty = built-in only)")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token(s) required on /predict, comma-separated for rotation (empty = open)")
	fs.Float64Var(&c.RateLimitRPS, "rate-limit-rps", 0, "per-client /predict requests per second (0 = unlimited)")
	fs.IntVar(&c.RateLimitBurst, "rate-limit-burst", 20, "per-client /predict burst size (1..10000)")
	fs.DurationVar(&c.SimulatedLatency, "simulated-latency", 0, "artificial delay before each evaluation (0..30s)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for resuscitation-level notifications")
}

// APITokens returns the configured bearer tokens with blanks removed.
func (c *Config) APITokens() []string {
	var out []string
	for _, t := range strings.Split(c.APIToken, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// RateLimited reports whether /predict is rate limited.
func (c *Config) RateLimited() bool {
	return c.RateLimitRPS > 0
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	if c.APIToken != "" && len(c.APITokens()) == 0 {
		errs = append(errs, errors.New("API_TOKEN contains no usable token"))
	}

	if math.IsNaN(c.RateLimitRPS) || math.IsInf(c.RateLimitRPS, 0) || c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_RPS %v (must be a finite number >= 0)", c.RateLimitRPS))
	}
	if c.RateLimited() && (c.RateLimitBurst < 1 || c.RateLimitBurst > maxRateLimitBurst) {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_BURST %d (must be 1..%d)", c.RateLimitBurst, maxRateLimitBurst))
	}

	if c.SimulatedLatency < 0 || c.SimulatedLatency > maxSimulatedLatency {
		errs = append(errs, fmt.Errorf("invalid SIMULATED_LATENCY %s (must be 0..%s)", c.SimulatedLatency, maxSimulatedLatency))
	}

	if c.SlackWebhookURL != "" {
		if err := validateWebhookURL(c.SlackWebhookURL); err != nil {
			errs = append(errs, fmt.Errorf("invalid SLACK_WEBHOOK_URL: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("scheme %q (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
