package runstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-ems/internal/model"
	"site-ems/internal/simulation"
)

func TestStore_PutGetLookup(t *testing.T) {
	s := New(time.Hour)
	params := model.DefaultRunParams()
	res := &simulation.Result{CapacityKWh: 5}

	run := s.Put(params, "", res)
	_, err := uuid.Parse(run.ID)
	require.NoError(t, err)

	got, ok := s.Get(run.ID)
	require.True(t, ok)
	assert.Same(t, res, got.Result)

	same, ok := s.Lookup(params, "")
	require.True(t, ok)
	assert.Equal(t, run.ID, same.ID)

	other := params
	other.Seed = 2
	_, ok = s.Lookup(other, "")
	assert.False(t, ok)
	_, ok = s.Lookup(params, "home")
	assert.False(t, ok)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestStore_ExpiryAndPrune(t *testing.T) {
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	s := New(time.Minute)
	s.now = func() time.Time { return now }

	a := s.Put(model.DefaultRunParams(), "", &simulation.Result{})
	now = now.Add(30 * time.Second)
	p := model.DefaultRunParams()
	p.Days = 3
	b := s.Put(p, "", &simulation.Result{})

	now = now.Add(45 * time.Second)
	_, ok := s.Get(a.ID)
	assert.False(t, ok, "a should be expired")
	_, ok = s.Get(b.ID)
	assert.True(t, ok)

	assert.Equal(t, 1, s.Prune())
	assert.Equal(t, 1, s.Len())
	_, ok = s.Lookup(model.DefaultRunParams(), "")
	assert.False(t, ok)

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestStore_NoTTLKeepsRuns(t *testing.T) {
	s := New(0)
	run := s.Put(model.DefaultRunParams(), "", &simulation.Result{})
	s.now = func() time.Time { return time.Now().Add(24 * 365 * time.Hour) }
	_, ok := s.Get(run.ID)
	assert.True(t, ok)
	assert.Equal(t, 0, s.Prune())
}

func TestStore_RunStopsOnCancel(t *testing.T) {
	s := New(time.Nanosecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
