package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/strefethen/sonos-nowplaying-go/internal/nowplaying"
)

// Fetcher returns one raw zones payload.
type Fetcher interface {
	FetchZones(ctx context.Context) ([]byte, error)
}

// Listener is notified after a poll changed the room list.
type Listener func(snapshot nowplaying.Snapshot)

// Status describes the poll loop for monitoring.
type Status struct {
	Running       bool      `json:"running"`
	Schedule      string    `json:"schedule"`
	Polls         int64     `json:"polls"`
	Failures      int64     `json:"failures"`
	Changes       int64     `json:"changes"`
	LastPollAt    time.Time `json:"last_poll_at"`
	LastSuccessAt time.Time `json:"last_success_at"`
	LastError     string    `json:"last_error,omitempty"`
	NextPollAt    time.Time `json:"next_poll_at"`
}

// Poller owns the poll cadence and drives the normalizer. Ticks never overlap:
// scheduled, triggered and direct polls all serialize on tickMu.
type Poller struct {
	fetcher      Fetcher
	normalizer   *nowplaying.Normalizer
	schedule     cron.Schedule
	scheduleDesc string
	timeout      time.Duration
	logger       *zap.Logger

	tickMu sync.Mutex

	listenersMu sync.RWMutex
	listeners   []Listener

	trigger chan struct{}

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	statusMu sync.RWMutex
	status   Status
}

// Options configures a Poller.
type Options struct {
	// Interval is used when Schedule is empty.
	Interval time.Duration
	// Schedule is a cron spec; descriptors such as "@every 30s" are accepted.
	Schedule string
	// Timeout bounds a single fetch. Zero leaves it to the fetcher.
	Timeout time.Duration
}

// ParseSchedule builds the tick schedule from options.
func ParseSchedule(opts Options) (cron.Schedule, string, error) {
	if opts.Schedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		schedule, err := parser.Parse(opts.Schedule)
		if err != nil {
			return nil, "", fmt.Errorf("invalid poll schedule: %w", err)
		}
		return schedule, opts.Schedule, nil
	}
	if opts.Interval <= 0 {
		return nil, "", errors.New("poll interval must be > 0")
	}
	schedule := cron.Every(opts.Interval)
	return schedule, "@every " + schedule.Delay.String(), nil
}

// New creates a poller. The normalizer's RoomList is the state it maintains.
func New(fetcher Fetcher, normalizer *nowplaying.Normalizer, opts Options, logger *zap.Logger) (*Poller, error) {
	if fetcher == nil {
		return nil, errors.New("poller: fetcher required")
	}
	if normalizer == nil {
		return nil, errors.New("poller: normalizer required")
	}
	schedule, desc, err := ParseSchedule(opts)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		fetcher:      fetcher,
		normalizer:   normalizer,
		schedule:     schedule,
		scheduleDesc: desc,
		timeout:      opts.Timeout,
		logger:       logger,
		trigger:      make(chan struct{}, 1),
		status:       Status{Schedule: desc},
	}, nil
}

// AddListener registers fn for change notifications.
func (p *Poller) AddListener(fn Listener) {
	p.listenersMu.Lock()
	defer p.listenersMu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Start runs the poll loop until Stop or ctx is cancelled. It polls once
// immediately, then on every schedule tick.
func (p *Poller) Start(ctx context.Context) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.setRunning(true)

	p.logger.Info("Poller starting", zap.String("schedule", p.scheduleDesc))

	go func(done chan struct{}) {
		defer close(done)
		defer p.setRunning(false)
		p.run(ctx)
	}(p.done)
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (p *Poller) Stop() {
	p.runMu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("Poller stopped")
}

// Trigger requests an immediate poll. Requests made while one is pending are coalesced.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// PollOnce fetches and normalizes one payload and reports whether the room
// list changed.
func (p *Poller) PollOnce(ctx context.Context) (bool, error) {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	payload, err := p.fetcher.FetchZones(ctx)
	if err == nil {
		var changed bool
		changed, err = p.normalizer.Update(payload)
		if err == nil {
			p.recordSuccess(start, changed)
			if changed {
				p.notify(p.normalizer.List().Snapshot())
			}
			return changed, nil
		}
	}

	p.recordFailure(start, err)
	return false, err
}

// Status returns a copy of the loop status.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}

func (p *Poller) run(ctx context.Context) {
	p.tick(ctx)

	for {
		next := p.schedule.Next(time.Now())
		p.setNext(next)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			p.tick(ctx)
		case <-p.trigger:
			timer.Stop()
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	changed, err := p.PollOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("Poll failed, keeping previous room list", zap.Error(err))
		return
	}
	if changed {
		p.logger.Debug("Room list updated", zap.Int("rooms", len(p.normalizer.List().Rooms())))
	}
}

func (p *Poller) notify(snapshot nowplaying.Snapshot) {
	p.listenersMu.RLock()
	listeners := append([]Listener(nil), p.listeners...)
	p.listenersMu.RUnlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
}

func (p *Poller) recordSuccess(at time.Time, changed bool) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.Polls++
	p.status.LastPollAt = at
	p.status.LastSuccessAt = at
	p.status.LastError = ""
	if changed {
		p.status.Changes++
	}
}

func (p *Poller) recordFailure(at time.Time, err error) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.Polls++
	p.status.Failures++
	p.status.LastPollAt = at
	p.status.LastError = err.Error()
}

func (p *Poller) setRunning(running bool) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.Running = running
}

func (p *Poller) setNext(next time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.NextPollAt = next
}
