package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpred "github.com/cfgpred/cfgpred-go"
)

type capturedEvents struct {
	events []ChangeEvent
}

func (c *capturedEvents) Publish(_ context.Context, event ChangeEvent) error {
	c.events = append(c.events, event)
	return nil
}

func TestInMemoryRegistryStoreAndGet(t *testing.T) {
	ctx := context.Background()
	registry := NewInMemoryRegistry(nil)

	stored, err := registry.Store(ctx, "32bit-unix", `all(unix,target_pointer_width="32",)`)
	require.NoError(t, err)

	// Source is canonicalized on the way in.
	assert.Equal(t, `all(unix, target_pointer_width = "32")`, stored.Source)
	assert.NotEmpty(t, stored.ID)
	assert.Len(t, stored.Fingerprint, 64)
	assert.False(t, stored.CreatedAt.IsZero())

	loaded, err := registry.Get(ctx, "32bit-unix")
	require.NoError(t, err)
	assert.Equal(t, stored.Source, loaded.Source)
	require.NotNil(t, loaded.Predicate)
	assert.True(t, loaded.Predicate.Matches(cfgpred.FlagEnv{
		{Key: "unix"},
		{Key: "target_pointer_width", Value: cfgpred.Value("32")},
	}))
}

func TestInMemoryRegistryRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	registry := NewInMemoryRegistry(nil)

	_, err := registry.Store(ctx, "", "unix")
	assert.Error(t, err, "name required")

	_, err = registry.Store(ctx, "bad", "foo(bar)")
	require.Error(t, err)
	var parseErr *cfgpred.ParseError
	assert.ErrorAs(t, err, &parseErr, "parse errors surface to the caller")
}

func TestInMemoryRegistryUpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	registry := NewInMemoryRegistry(nil)

	first, err := registry.Store(ctx, "p", "unix")
	require.NoError(t, err)

	second, err := registry.Store(ctx, "p", "not(unix)")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, "not(unix)", second.Source)
	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
}

func TestInMemoryRegistryListAndDelete(t *testing.T) {
	ctx := context.Background()
	registry := NewInMemoryRegistry(nil)

	for _, name := range []string{"c", "a", "b"} {
		_, err := registry.Store(ctx, name, "unix")
		require.NoError(t, err)
	}

	list, err := registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "b", list[1].Name)
	assert.Equal(t, "c", list[2].Name)

	require.NoError(t, registry.Delete(ctx, "b"))
	assert.ErrorIs(t, registry.Delete(ctx, "b"), ErrNotFound)

	_, err = registry.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryRegistryPublishesChanges(t *testing.T) {
	ctx := context.Background()
	captured := &capturedEvents{}
	registry := NewInMemoryRegistry(captured)

	_, err := registry.Store(ctx, "p", "unix")
	require.NoError(t, err)
	require.NoError(t, registry.Delete(ctx, "p"))

	require.Len(t, captured.events, 2)
	assert.Equal(t, "stored", captured.events[0].Op)
	assert.Equal(t, "p", captured.events[0].Name)
	assert.NotEmpty(t, captured.events[0].Fingerprint)
	assert.Equal(t, "deleted", captured.events[1].Op)

	// Failed stores publish nothing.
	_, err = registry.Store(ctx, "bad", "foo(bar)")
	require.Error(t, err)
	assert.Len(t, captured.events, 2)
}
