package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HA2077/SmartChef/models"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	log, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestRecordAndQuery(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	events := []Event{
		{OrderID: "ORD-AAAA1111", Kind: EventTransitioned, FromStatus: models.StatusDraft, ToStatus: models.StatusPending, Actor: "alice"},
		{OrderID: "ORD-AAAA1111", Kind: EventTransitioned, FromStatus: models.StatusPending, ToStatus: models.StatusProcessing, Actor: "bob"},
		{OrderID: "ORD-BBBB2222", Kind: EventTransitioned, FromStatus: models.StatusDraft, ToStatus: models.StatusPending, Actor: "alice"},
		{OrderID: "ORD-AAAA1111", Kind: EventReceiptIssued, FromStatus: models.StatusCompleted, ToStatus: models.StatusCompleted, Actor: "bob", Detail: "RCP-CCCC3333"},
	}
	for _, event := range events {
		require.NoError(t, log.Record(ctx, event))
	}

	trail, err := log.EventsForOrder(ctx, "ORD-AAAA1111")
	require.NoError(t, err)
	require.Len(t, trail, 3)

	// Oldest first, with every field intact.
	assert.Equal(t, EventTransitioned, trail[0].Kind)
	assert.Equal(t, models.StatusDraft, trail[0].FromStatus)
	assert.Equal(t, models.StatusPending, trail[0].ToStatus)
	assert.Equal(t, "alice", trail[0].Actor)
	assert.Equal(t, EventReceiptIssued, trail[2].Kind)
	assert.Equal(t, "RCP-CCCC3333", trail[2].Detail)
	assert.False(t, trail[0].RecordedAt.IsZero())
}

func TestEventsForUnknownOrder(t *testing.T) {
	log := openTestLog(t)

	trail, err := log.EventsForOrder(context.Background(), "ORD-MISSING1")
	require.NoError(t, err)
	assert.Empty(t, trail)
}

func TestRecordFillsTimestamp(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	require.NoError(t, log.Record(ctx, Event{OrderID: "ORD-AAAA1111", Kind: EventSaved}))

	trail, err := log.EventsForOrder(ctx, "ORD-AAAA1111")
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.True(t, trail[0].RecordedAt.After(before))
}

func TestPruneBefore(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	old := Event{OrderID: "ORD-AAAA1111", Kind: EventSaved, RecordedAt: time.Now().Add(-48 * time.Hour)}
	recent := Event{OrderID: "ORD-AAAA1111", Kind: EventSaved}
	require.NoError(t, log.Record(ctx, old))
	require.NoError(t, log.Record(ctx, recent))

	pruned, err := log.PruneBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	trail, err := log.EventsForOrder(ctx, "ORD-AAAA1111")
	require.NoError(t, err)
	assert.Len(t, trail, 1)
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.db")
	ctx := context.Background()

	log, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, log.Record(ctx, Event{OrderID: "ORD-AAAA1111", Kind: EventSaved}))
	require.NoError(t, log.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	trail, err := reopened.EventsForOrder(ctx, "ORD-AAAA1111")
	require.NoError(t, err)
	assert.Len(t, trail, 1)
}

func TestNopRecorder(t *testing.T) {
	assert.NoError(t, NopRecorder{}.Record(context.Background(), Event{Kind: EventStoreCleared}))
}
