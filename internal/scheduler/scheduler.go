// Package scheduler runs background maintenance for the notification log.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/cloudcitycakeco/cakeorders/internal/storage"
)

const pruneTimeout = time.Minute

// Config holds the scheduler configuration.
type Config struct {
	Store storage.NotificationStore
	// Retention is how long notification log entries are kept. Zero disables pruning.
	Retention time.Duration
	// RunAt is the daily "HH:MM" time pruning runs at. When empty or invalid
	// pruning runs every 24 hours from start-up.
	RunAt  string
	Logger *slog.Logger
	// Now overrides the clock used to compute the retention cutoff.
	Now func() time.Time
}

// Scheduler prunes the notification log on a schedule using gocron.
type Scheduler struct {
	cron    gocron.Scheduler
	cfg     Config
	logger  *slog.Logger
	mu      sync.Mutex
	last    time.Time
	started bool
}

// New creates a new Scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("scheduler: notification store is required")
	}
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{cron: cron, cfg: cfg, logger: cfg.Logger}, nil
}

// Start schedules the pruning job and starts the gocron scheduler.
func (s *Scheduler) Start(_ context.Context) error {
	if s.cfg.Retention <= 0 {
		s.logger.Info("notification log retention disabled")
		return nil
	}

	def := s.jobDefinition()
	if _, err := s.cron.NewJob(def, gocron.NewTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
		defer cancel()
		if _, err := s.PruneNow(ctx); err != nil {
			s.logger.Error("notification log pruning failed", "error", err)
		}
	}), gocron.WithSingletonMode(gocron.LimitModeReschedule)); err != nil {
		return fmt.Errorf("scheduling notification log pruning: %w", err)
	}

	s.cron.Start()
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	s.logger.Info("notification log pruning scheduled", "retention", s.cfg.Retention, "run_at", s.cfg.RunAt)
	return nil
}

// Stop shuts down the gocron scheduler. It is a no-op when Start never
// scheduled anything.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}
	return s.cron.Shutdown()
}

// PruneNow deletes notification log entries older than the retention period.
func (s *Scheduler) PruneNow(ctx context.Context) (int64, error) {
	if s.cfg.Retention <= 0 {
		return 0, nil
	}
	now := s.cfg.Now()
	n, err := s.cfg.Store.PruneNotifications(ctx, now.Add(-s.cfg.Retention))
	if err != nil {
		return 0, fmt.Errorf("pruning notification log: %w", err)
	}
	s.mu.Lock()
	s.last = now
	s.mu.Unlock()
	s.logger.Info("notification log pruned", "removed", n)
	return n, nil
}

// LastRun returns when pruning last succeeded, or the zero time.
func (s *Scheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) jobDefinition() gocron.JobDefinition {
	if s.cfg.RunAt != "" {
		def, err := dailyAt(s.cfg.RunAt)
		if err == nil {
			return def
		}
		s.logger.Warn("invalid prune time, falling back to a 24h interval", "run_at", s.cfg.RunAt, "error", err)
	}
	return gocron.DurationJob(24 * time.Hour)
}

// dailyAt parses an "HH:MM" string into a daily gocron job.
func dailyAt(at string) (gocron.JobDefinition, error) {
	hour, minute, err := parseClock(at)
	if err != nil {
		return nil, err
	}
	return gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(
		uint(hour),   //nolint:gosec // bounds checked in parseClock
		uint(minute), //nolint:gosec // bounds checked in parseClock
		0,
	))), nil
}

func parseClock(at string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(at), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time format %q, want HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parsing hour: %w", err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parsing minute: %w", err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: %d:%d", hour, minute)
	}
	return hour, minute, nil
}
