package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"cryptodash/internal/provider"
)

// State is the lifecycle state of a Dashboard.
type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type Config struct {
	Coins    []string
	Interval time.Duration
	Currency string
}

// Dashboard polls a provider and renders its quotes until the run context is canceled.
// It owns the provider and closes it when Run returns.
//
//go:generate mockgen -package=dashboard -destination=mock_provider_test.go cryptodash/internal/provider Provider
type Dashboard struct {
	cfg      Config
	provider provider.Provider
	renderer Renderer
	out      io.Writer
	logger   logrus.FieldLogger
	now      func() time.Time
	wait     func(ctx context.Context, d time.Duration) error
	state    State
}

type Option func(*Dashboard)

// WithOutput sets the terminal writer. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(d *Dashboard) { d.out = w }
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Dashboard) { d.logger = logger }
}

// WithClock sets the source of the "Last updated" timestamp.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

// WithWait replaces the inter-cycle sleep. wait must return a non-nil error once ctx is done.
func WithWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Dashboard) { d.wait = wait }
}

func New(cfg Config, p provider.Provider, opts ...Option) (*Dashboard, error) {
	if p == nil {
		return nil, errors.New("dashboard: nil provider")
	}
	if len(cfg.Coins) == 0 {
		return nil, errors.New("dashboard: no coins configured")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("dashboard: interval must be positive, got %s", cfg.Interval)
	}
	d := &Dashboard{
		cfg:      cfg,
		provider: p,
		renderer: Renderer{Currency: cfg.Currency},
		out:      os.Stdout,
		logger:   logrus.StandardLogger(),
		now:      time.Now,
		wait:     sleep,
		state:    Running,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *Dashboard) State() State { return d.state }

// Run fetches, renders and sleeps until ctx is canceled. Fetch failures never end the loop.
// It returns nil after a normal shutdown.
func (d *Dashboard) Run(ctx context.Context) error {
	defer d.release()

	d.logger.Info("Starting Crypto Dashboard")
	d.logger.Infof("Tracking: %s", strings.Join(d.cfg.Coins, ", "))

	for ctx.Err() == nil {
		d.cycle(ctx)
		if ctx.Err() != nil {
			break
		}
		if err := d.wait(ctx, d.cfg.Interval); err != nil {
			break
		}
	}

	d.state = Stopped
	fmt.Fprint(d.out, "\n\nExiting Crypto Dashboard. Goodbye!\n")
	d.logger.Info("Dashboard stopped by user")
	return nil
}

func (d *Dashboard) cycle(ctx context.Context) {
	quotes, err := d.provider.Fetch(ctx, d.cfg.Coins)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		d.reportFailure(err)
		return
	}
	d.logger.WithField("quotes", len(quotes)).Debug("fetched prices")
	if err := d.renderer.Render(d.out, d.cfg.Coins, quotes, d.now()); err != nil {
		d.logger.WithError(err).Warn("render failed")
	}
}

// reportFailure leaves the last table on screen and prints a retry notice below it.
func (d *Dashboard) reportFailure(err error) {
	kind := "Unknown"
	fields := logrus.Fields{}
	var fe *provider.FetchError
	if errors.As(err, &fe) {
		kind = fe.Kind.String()
		if fe.StatusCode != 0 {
			fields["status"] = fe.StatusCode
		}
	}
	fields["kind"] = kind
	d.logger.WithFields(fields).WithError(err).Warn("Failed to fetch prices")
	fmt.Fprintf(d.out, "Failed to fetch prices. Retrying in %gs...\n", d.cfg.Interval.Seconds())
}

func (d *Dashboard) release() {
	if err := d.provider.Close(); err != nil {
		d.logger.WithError(err).Warn("closing provider")
	}
}

// sleep waits for dur or until ctx is done, whichever comes first.
func sleep(ctx context.Context, dur time.Duration) error {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
