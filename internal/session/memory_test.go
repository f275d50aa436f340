package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeepikaKgithub/PharmaGEN/pkg"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := pkg.NewConsultation("c1")
	c.Language = "English"
	require.NoError(t, store.Create(ctx, c))
	assert.Equal(t, int64(1), c.Version)

	got, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, "English", got.Language)
	assert.Equal(t, int64(1), got.Version)
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCreateRejectsDuplicates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, pkg.NewConsultation("c1")))
	err := store.Create(ctx, pkg.NewConsultation("c1"))
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestMemoryStoreCreateRejectsMissingID(t *testing.T) {
	store := NewMemoryStore()
	err := store.Create(context.Background(), &pkg.Consultation{})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestMemoryStoreUpdateBumpsVersion(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := pkg.NewConsultation("c1")
	require.NoError(t, store.Create(ctx, c))

	c.Stage = pkg.StageAskSymptoms
	require.NoError(t, store.Update(ctx, c))
	assert.Equal(t, int64(2), c.Version)

	got, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, pkg.StageAskSymptoms, got.Stage)
	assert.Equal(t, int64(2), got.Version)
}

func TestMemoryStoreUpdateDetectsConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := pkg.NewConsultation("c1")
	require.NoError(t, store.Create(ctx, c))

	first, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	second, err := store.Get(ctx, "c1")
	require.NoError(t, err)

	first.Stage = pkg.StageAskSymptoms
	require.NoError(t, store.Update(ctx, first))

	second.Stage = pkg.StageGeneralQnA
	err = store.Update(ctx, second)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestMemoryStoreUpdateUnknown(t *testing.T) {
	store := NewMemoryStore()
	err := store.Update(context.Background(), pkg.NewConsultation("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreHandsOutClones(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := pkg.NewConsultation("c1")
	c.History = []pkg.Turn{{Role: pkg.RoleUser, Text: "original"}}
	require.NoError(t, store.Create(ctx, c))

	// Mutating the caller's copy must not leak into the store.
	c.History[0].Text = "mutated"
	c.Language = "changed"

	got, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "original", got.History[0].Text)
	assert.Empty(t, got.Language)

	// And mutating a read copy must not either.
	got.History[0].Text = "mutated again"
	again, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.History[0].Text)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, pkg.NewConsultation("c1")))
	require.NoError(t, store.Delete(ctx, "c1"))

	_, err := store.Get(ctx, "c1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "c1"), ErrNotFound)
}

func TestMemoryStoreSweepDropsOnlyIdleRecords(t *testing.T) {
	store := NewMemoryStore(WithTTL(30 * time.Minute))
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, pkg.NewConsultation("stale")))
	require.NoError(t, store.Create(ctx, pkg.NewConsultation("active")))
	store.mu.Lock()
	store.items["stale"].UpdatedAt = time.Now().UTC().Add(-time.Hour)
	store.mu.Unlock()

	store.sweep(time.Now().Add(-30 * time.Minute))

	_, err := store.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "active")
	assert.NoError(t, err)
}

func TestMemoryStoreJanitorExpiresIdleRecords(t *testing.T) {
	store := NewMemoryStore(WithTTL(20 * time.Millisecond))
	defer store.Close()
	require.NoError(t, store.Create(context.Background(), pkg.NewConsultation("short-lived")))

	assert.Eventually(t, func() bool {
		_, err := store.Get(context.Background(), "short-lived")
		return errors.Is(err, ErrNotFound)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMemoryStoreCloseIsIdempotent(t *testing.T) {
	store := NewMemoryStore(WithTTL(time.Minute))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestNewStoreFactory(t *testing.T) {
	store, err := NewStore(StoreTypeMemory)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	assert.NoError(t, store.Close())

	_, err = NewStore(StoreType("cassandra"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown session store type")
}
