// Package poll runs notification cycles: fetch followed channels, keep the
// videos published since the last run, notify, and advance the marker.
package poll

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"yt-sub/internal/models"
	"yt-sub/internal/notify"
)

// DefaultLookback bounds the first run of an account without a marker.
const DefaultLookback = 7 * 24 * time.Hour

const defaultConcurrency = 4

// Store provides the per-account state a cycle reads and advances.
type Store interface {
	Settings(ctx context.Context, accountID string) (models.Settings, error)
	// LastRunAt returns false when no marker was ever recorded.
	LastRunAt(ctx context.Context, accountID string) (time.Time, bool, error)
	SetLastRunAt(ctx context.Context, accountID string, t time.Time) error
}

// VideoFetcher retrieves the current feed entries of a channel.
type VideoFetcher interface {
	FetchVideos(ctx context.Context, channel models.Channel) ([]models.Video, error)
}

// Dispatcher delivers rendered messages through one notifier.
type Dispatcher interface {
	Notify(ctx context.Context, notifier models.Notifier, messages []string, cronMode bool) error
}

// AdvancePolicy decides whether the marker moves when no fresh video was found.
type AdvancePolicy int

const (
	// AdvanceWhenDispatched leaves the marker untouched when there is nothing to send.
	AdvanceWhenDispatched AdvancePolicy = iota
	// AdvanceAlways moves the marker after every completed cycle.
	AdvanceAlways
)

func (p AdvancePolicy) String() string {
	switch p {
	case AdvanceWhenDispatched:
		return "advance-when-dispatched"
	case AdvanceAlways:
		return "advance-always"
	default:
		return fmt.Sprintf("AdvancePolicy(%d)", int(p))
	}
}

// Report summarizes one cycle.
type Report struct {
	Skipped         bool
	Channels        int
	FailedChannels  int
	FreshVideos     int
	Notifiers       int
	FailedNotifiers int
	Advanced        bool
}

// Cycle runs poll cycles for single accounts.
type Cycle struct {
	store      Store
	fetcher    VideoFetcher
	dispatcher Dispatcher
	logger     *zap.SugaredLogger

	Policy   AdvancePolicy
	CronMode bool
	// EnforceCaps applies the stored-account limits on channels and notifiers.
	EnforceCaps bool
	// Lookback, when positive, replaces the stored marker as the cutoff.
	Lookback    time.Duration
	Concurrency int
	Now         func() time.Time
}

// New creates a Cycle with the AdvanceWhenDispatched policy and caps enforced.
func New(store Store, fetcher VideoFetcher, dispatcher Dispatcher, logger *zap.SugaredLogger) *Cycle {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Cycle{
		store:       store,
		fetcher:     fetcher,
		dispatcher:  dispatcher,
		logger:      logger,
		Policy:      AdvanceWhenDispatched,
		EnforceCaps: true,
		Concurrency: defaultConcurrency,
		Now:         time.Now,
	}
}

// RunOnce runs a single cycle for the account. Channel and notifier failures
// are logged and never returned.
func (c *Cycle) RunOnce(ctx context.Context, accountID string) error {
	_, err := c.Run(ctx, accountID)
	return err
}

// Run is RunOnce returning a summary of the work done.
func (c *Cycle) Run(ctx context.Context, accountID string) (*Report, error) {
	report := &Report{}
	now := c.Now().UTC()

	settings, err := c.store.Settings(ctx, accountID)
	if err != nil {
		return report, fmt.Errorf("failed to read settings: %w", err)
	}
	validate := settings.ValidateLocal
	if c.EnforceCaps {
		validate = settings.Validate
	}
	if err := validate(); err != nil {
		return report, err
	}

	if !IsDue(settings.Schedule, now) {
		c.logger.Debugw("Skipping account outside its schedule", "account", accountID, "hour", now.Hour())
		report.Skipped = true
		return report, nil
	}

	// A started cycle finishes its fetches and deliveries before the marker
	// moves, so cancellation never advances it past undelivered videos.
	ctx = context.WithoutCancel(ctx)

	lastRunAt, found, err := c.store.LastRunAt(ctx, accountID)
	if err != nil {
		return report, fmt.Errorf("failed to read last run: %w", err)
	}
	cutoff := now.Add(-DefaultLookback)
	if found {
		cutoff = lastRunAt
	}
	if c.Lookback > 0 {
		cutoff = now.Add(-c.Lookback)
	}

	fresh := c.collect(ctx, accountID, settings.Channels, cutoff, report)
	report.FreshVideos = len(fresh)

	c.logger.Infow("Fresh videos collected",
		"account", accountID,
		"channels", report.Channels,
		"failed_channels", report.FailedChannels,
		"fresh", len(fresh),
		"cutoff", cutoff.Format(time.RFC3339))

	if len(fresh) == 0 && c.Policy == AdvanceWhenDispatched {
		return report, nil
	}

	if len(fresh) > 0 {
		c.dispatch(ctx, accountID, settings.Notifiers, fresh, report)
	}

	if found && lastRunAt.After(now) {
		return report, nil
	}

	if err := c.store.SetLastRunAt(ctx, accountID, now); err != nil {
		return report, fmt.Errorf("failed to update last run: %w", err)
	}
	report.Advanced = true
	return report, nil
}

func (c *Cycle) collect(ctx context.Context, accountID string, channels []models.Channel, cutoff time.Time, report *Report) []models.Video {
	results := make([][]models.Video, len(channels))
	failed := make([]bool, len(channels))

	var g errgroup.Group
	g.SetLimit(c.limit())
	for i, channel := range channels {
		g.Go(func() error {
			videos, err := c.fetcher.FetchVideos(ctx, channel)
			if err != nil {
				c.logger.Warnw("Channel fetch failed", "account", accountID, "channel_id", channel.ChannelID, "error", err)
				failed[i] = true
				return nil
			}
			results[i] = FilterFresh(videos, cutoff)
			return nil
		})
	}
	_ = g.Wait()

	var fresh []models.Video
	for i := range channels {
		if failed[i] {
			report.FailedChannels++
		}
		fresh = append(fresh, results[i]...)
	}
	report.Channels = len(channels)
	return fresh
}

func (c *Cycle) dispatch(ctx context.Context, accountID string, notifiers []models.Notifier, videos []models.Video, report *Report) {
	failed := make([]bool, len(notifiers))

	var g errgroup.Group
	g.SetLimit(c.limit())
	for i, notifier := range notifiers {
		g.Go(func() error {
			messages, err := notify.RenderAll(videos, notifier)
			if err == nil {
				err = c.dispatcher.Notify(ctx, notifier, messages, c.CronMode)
			}
			if err != nil {
				c.logger.Errorw("Notifier failed", "account", accountID, "kind", notifier.Kind, "error", err)
				failed[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Notifiers = len(notifiers)
	for _, f := range failed {
		if f {
			report.FailedNotifiers++
		}
	}
}

func (c *Cycle) limit() int {
	if c.Concurrency <= 0 {
		return 1
	}
	return c.Concurrency
}
