package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TickHandler runs the work for a single scheduled day.
type TickHandler func(ctx context.Context, day time.Time) error

// DailySchedulerConfig configures when the scheduler fires.
type DailySchedulerConfig struct {
	At     string // wall-clock HH:MM
	Logger *zap.Logger
	Now    func() time.Time
}

// DailyScheduler fires a handler once per day at a fixed wall-clock time.
// The handler owns the "what"; the scheduler only owns the "when", so the
// same handler can also be invoked directly from an admin endpoint.
type DailyScheduler struct {
	name    string
	handler TickHandler

	hour   int
	minute int
	logger *zap.Logger
	now    func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewDailyScheduler builds a scheduler for the provided handler.
func NewDailyScheduler(name string, handler TickHandler, cfg DailySchedulerConfig) (*DailyScheduler, error) {
	hour, minute, err := parseClock(cfg.At)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &DailyScheduler{
		name:    name,
		handler: handler,
		hour:    hour,
		minute:  minute,
		logger:  logger,
		now:     now,
	}, nil
}

// Start launches the scheduling goroutine. Safe to call once.
func (s *DailyScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run()
	s.started = true
	s.logger.Sugar().Infow("scheduler started", "job", s.name, "at", fmt.Sprintf("%02d:%02d", s.hour, s.minute))
}

// Stop cancels the scheduler and waits for the loop to exit.
func (s *DailyScheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Sugar().Infow("scheduler stopped", "job", s.name)
}

func (s *DailyScheduler) run() {
	defer s.wg.Done()
	for {
		wait := s.untilNextFire()
		timer := time.NewTimer(wait)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		day := s.now()
		if err := s.handler(s.ctx, day); err != nil {
			s.logger.Error("scheduled job failed",
				zap.String("job", s.name),
				zap.Time("day", day),
				zap.Error(err),
			)
		}
	}
}

func (s *DailyScheduler) untilNextFire() time.Duration {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func parseClock(raw string) (int, int, error) {
	if raw == "" {
		return 0, 0, fmt.Errorf("schedule time is required")
	}
	var hour, minute int
	if _, err := fmt.Sscanf(raw, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("parse schedule time %q: %w", raw, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("schedule time %q out of range", raw)
	}
	return hour, minute, nil
}
