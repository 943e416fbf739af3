package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/logging"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	store *memory.Store
	clock *fakeClock
	sync  *SyncService
	alice *models.Account
	bob   *models.Account
}

func newHarness(t *testing.T, propagateDeletes bool) *harness {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	store := memory.New(memory.WithClock(clock.Now))

	ctx := context.Background()
	alice, err := store.Accounts().Create(ctx, &models.Account{Username: "alice", ColorCode: "#ff0000"})
	require.NoError(t, err)
	bob, err := store.Accounts().Create(ctx, &models.Account{Username: "bob", ColorCode: "#0000ff"})
	require.NoError(t, err)

	svc := NewSyncService(NewReconciler(store, logging.Nop{}, propagateDeletes), logging.Nop{})
	svc.now = clock.Now
	return &harness{store: store, clock: clock, sync: svc, alice: alice, bob: bob}
}
