package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCleaner_EvictsStaleSessions(t *testing.T) {
	r := NewRegistry(testLogger())
	r.Put(FlowSession{Ref: MessageRef{ChatID: 1, MessageID: 10}, OwnerID: 42, Kind: KindProfileView})

	cleaner := NewCleaner(r, testLogger(), 10*time.Millisecond, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	cleaner.Run(ctx)

	require.Zero(t, r.Len())
}

func TestCleaner_StopsOnContextCancel(t *testing.T) {
	r := NewRegistry(testLogger())
	cleaner := NewCleaner(r, testLogger(), time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		cleaner.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop on context cancellation")
	}
}
