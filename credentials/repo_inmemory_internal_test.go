package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ryavnn/Employee-Management-system/roles"
)

func TestInMemoryStore_ExpiredEntriesAreDropped(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := NewInMemoryStore(time.Hour)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	const stale, other, fresh = "7c9e6679-7425-40de-944b-e07fc1f90ae7", "16fd2706-8baf-433b-82eb-8c7fada847da", "886313e1-3b8a-5372-9b90-0c9aee199e5d"
	identity := &Identity{Username: "jane", Role: roles.HR}

	require.NoError(t, store.Set(ctx, stale, Credential{Token: "a", Identity: identity}))
	require.NoError(t, store.Set(ctx, other, Credential{Token: "b", Identity: identity}))
	require.Len(t, store.entries, 4)

	now = now.Add(2 * time.Hour)

	t.Run("Get removes an expired credential", func(t *testing.T) {
		_, err := store.Get(ctx, stale)
		require.Error(t, err)
		require.NotContains(t, store.entries, entryKey(stale, TokenKey))
		require.NotContains(t, store.entries, entryKey(stale, UserKey))
	})

	t.Run("Set sweeps other expired credentials", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, fresh, Credential{Token: "c"}))
		require.Len(t, store.entries, 1)
		require.Contains(t, store.entries, entryKey(fresh, TokenKey))
	})
}
