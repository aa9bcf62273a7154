package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Scheduler is the poll driver: a single background goroutine ticking at
// a fixed interval, running the reminder matcher then the inventory
// watcher inside one failure-isolated unit. It is owned by the
// application lifecycle: started once, stopped on shutdown. Ticks never
// overlap; an overrunning tick delays the next one.
type Scheduler struct {
	matcher  *ReminderMatcher
	watcher  *InventoryWatcher
	clock    Clock
	interval time.Duration
	stopChan chan struct{}
	started  bool
}

// New assembles the poll driver. A nil clock falls back to the system
// clock.
func New(matcher *ReminderMatcher, watcher *InventoryWatcher, clock Clock, interval time.Duration) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Scheduler{
		matcher:  matcher,
		watcher:  watcher,
		clock:    clock,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the tick loop. Calling Start on a running scheduler is a
// logged no-op, so there is always a single job identity.
func (s *Scheduler) Start() {
	if s.started {
		log.Println("[Scheduler] Already running, start ignored")
		return
	}
	s.started = true

	log.Printf("[Scheduler] Starting poll driver (interval: %s)", s.interval)

	go func() {
		// Run immediately on start
		s.RunTick(context.Background())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunTick(context.Background())
			case <-s.stopChan:
				log.Println("[Scheduler] Stopped")
				return
			}
		}
	}()
}

// Stop ends the tick loop. In-flight work is not interrupted; no further
// ticks are scheduled.
func (s *Scheduler) Stop() {
	if !s.started {
		return
	}
	close(s.stopChan)
}

// RunTick executes one matcher+watcher cycle. Any error or panic inside
// the tick is caught and logged here; it must never crash the driver or
// skip future ticks. Writes are short and eagerly committed, so partial
// progress from before a failure survives.
func (s *Scheduler) RunTick(ctx context.Context) {
	tickID := uuid.New().String()[:8]
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Scheduler] Tick %s panicked: %v", tickID, r)
		}
	}()

	now := s.clock.Now()
	log.Printf("[Scheduler] Tick %s at %s", tickID, now.Format(time.RFC3339))

	if err := s.matcher.Run(ctx, now); err != nil {
		log.Printf("[Scheduler] Tick %s reminder pass failed: %v", tickID, err)
		return
	}
	if err := s.watcher.Run(ctx); err != nil {
		log.Printf("[Scheduler] Tick %s inventory pass failed: %v", tickID, err)
	}
}
