// Package scheduler runs background jobs that keep the session state fresh
package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	businessflow "github.com/amirphl/repair-desk/business_flow"
	"github.com/redis/go-redis/v9"
)

const generationTimeout = 2 * time.Second

// StateRefresher reloads the session state on a ticker. A reload happens when the
// state is in the error state, when the shared generation counter in Redis moved
// (another instance wrote), or when the loaded data is older than maxAge.
//
// It also implements businessflow.StateObserver: every successful local mutation
// increments the shared generation so other instances pick it up.
type StateRefresher struct {
	rc            *redis.Client
	generationKey string
	logger        *log.Logger
	interval      time.Duration
	maxAge        time.Duration
	now           func() time.Time

	mu         sync.Mutex
	generation int64
}

// NewStateRefresher creates a refresher. rc may be nil, in which case reloads are
// driven by maxAge alone. maxAge defaults to interval.
func NewStateRefresher(rc *redis.Client, prefix string, interval, maxAge time.Duration, logger *log.Logger) *StateRefresher {
	if interval <= 0 {
		interval = time.Minute
	}
	if maxAge <= 0 {
		maxAge = interval
	}
	if logger == nil {
		logger = log.Default()
	}
	key := "generation"
	if prefix != "" {
		key = prefix + ":generation"
	}
	return &StateRefresher{
		rc:            rc,
		generationKey: key,
		logger:        logger,
		interval:      interval,
		maxAge:        maxAge,
		now:           time.Now,
	}
}

// Start launches the refresh loop in a background goroutine and returns a stop function
func (s *StateRefresher) Start(parent context.Context, system businessflow.RepairSystem) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx, system)
			}
		}
	}()

	return cancel
}

func (s *StateRefresher) runOnce(ctx context.Context, system businessflow.RepairSystem) {
	reason, generation := s.reloadReason(ctx, system)
	if reason == "" {
		return
	}

	start := s.now()
	if err := system.Load(ctx); err != nil {
		if errors.Is(err, businessflow.ErrSessionClosed) {
			return
		}
		s.logger.Printf("scheduler: state reload (%s) failed: %v", reason, err)
		return
	}

	s.mu.Lock()
	if generation > s.generation {
		s.generation = generation
	}
	s.mu.Unlock()
	s.logger.Printf("scheduler: state reloaded (%s) revision=%d took=%s", reason, system.Revision(), s.now().Sub(start))
}

// reloadReason returns why the state needs a reload, or "" when it is fresh
func (s *StateRefresher) reloadReason(ctx context.Context, system businessflow.RepairSystem) (string, int64) {
	if system.Err() != nil {
		return "error state", 0
	}

	generation, err := s.currentGeneration(ctx)
	if err != nil {
		s.logger.Printf("scheduler: read generation failed: %v", err)
	}
	s.mu.Lock()
	seen := s.generation
	s.mu.Unlock()
	if generation > seen {
		return "generation changed", generation
	}

	snapshot := system.Snapshot()
	if snapshot.LoadedAt.IsZero() || s.now().Sub(snapshot.LoadedAt) >= s.maxAge {
		return "max age", generation
	}
	return "", generation
}

func (s *StateRefresher) currentGeneration(ctx context.Context) (int64, error) {
	if s.rc == nil {
		return 0, nil
	}
	generation, err := s.rc.Get(ctx, s.generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

// Loaded is a no-op; the refresher records the generation itself after a reload.
func (s *StateRefresher) Loaded(businessflow.Snapshot, time.Duration, error) {}

// Mutated bumps the shared generation after a successful local write
func (s *StateRefresher) Mutated(op string, _ businessflow.Snapshot, err error) {
	if err != nil || s.rc == nil {
		return
	}
	go s.bumpGeneration(op)
}

func (s *StateRefresher) bumpGeneration(op string) {
	ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
	defer cancel()

	generation, err := s.rc.Incr(ctx, s.generationKey).Result()
	if err != nil {
		s.logger.Printf("scheduler: bump generation after %s failed: %v", op, err)
		return
	}

	// Our own write needs no reload unless another instance wrote in between.
	s.mu.Lock()
	if generation == s.generation+1 {
		s.generation = generation
	}
	s.mu.Unlock()
}
