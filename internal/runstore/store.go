package runstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"site-ems/internal/model"
	"site-ems/internal/simulation"
)

// Run is a finished simulation kept for later retrieval (ledger, CSV).
type Run struct {
	ID        string
	Key       string
	Params    model.RunParams
	Battery   string
	Result    *simulation.Result
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store keeps runs in memory for a fixed TTL.
// Runs are deterministic in their parameters, so a second request with the same
// parameters is served from the store.
type Store struct {
	mu    sync.RWMutex
	runs  map[string]*Run
	byKey map[string]string
	ttl   time.Duration
	now   func() time.Time
}

// New creates a store. ttl <= 0 keeps runs until Clear.
func New(ttl time.Duration) *Store {
	return &Store{
		runs:  make(map[string]*Run),
		byKey: make(map[string]string),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put stores a result and returns the new run.
func (s *Store) Put(params model.RunParams, battery string, res *simulation.Result) *Run {
	now := s.now()
	run := &Run{
		ID:        uuid.NewString(),
		Key:       Key(params, battery),
		Params:    params,
		Battery:   battery,
		Result:    res,
		CreatedAt: now,
	}
	if s.ttl > 0 {
		run.ExpiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	s.byKey[run.Key] = run.ID
	return run
}

// Get retrieves a run if available and not expired.
func (s *Store) Get(id string) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok || s.expired(run, s.now()) {
		return nil, false
	}
	return run, true
}

// Lookup finds a live run with the same parameters.
func (s *Store) Lookup(params model.RunParams, battery string) (*Run, bool) {
	s.mu.RLock()
	id, ok := s.byKey[Key(params, battery)]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return s.Get(id)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// Clear removes all runs.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = make(map[string]*Run)
	s.byKey = make(map[string]string)
}

// Prune removes expired runs and returns how many were dropped.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, run := range s.runs {
		if !s.expired(run, now) {
			continue
		}
		delete(s.runs, id)
		if s.byKey[run.Key] == id {
			delete(s.byKey, run.Key)
		}
		n++
	}
	return n
}

// Run prunes periodically until ctx is done.
func (s *Store) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune()
		}
	}
}

func (s *Store) expired(run *Run, now time.Time) bool {
	return !run.ExpiresAt.IsZero() && now.After(run.ExpiresAt)
}

// Key creates a deterministic key from the run parameters.
func Key(params model.RunParams, battery string) string {
	keyStr := fmt.Sprintf("%s:%d:%v:%v:%d:%d",
		battery,
		params.Days,
		params.CapacityKWh,
		params.InitialLevelKWh,
		params.Seed,
		params.ZoomDays,
	)
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
