package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/pathflow/pkg/adapters/redis"
	"github.com/aretw0/pathflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *backend.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPublisher_PublishesInOrder(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)

	sub := client.Subscribe(ctx, "changes")
	defer sub.Close()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	pub := redis.NewFromClient(client, redis.WithChannel("changes"))
	events := []domain.ChangeEvent{
		{ModelID: "I1", Kind: domain.ChangeModel, Description: "N1 added to G1"},
		{ModelID: "I1", Kind: domain.ChangeModel, Description: "N2 added to G1"},
	}
	require.NoError(t, pub.Publish(ctx, events))

	ch := sub.Channel()
	for _, want := range events {
		select {
		case msg := <-ch:
			var got domain.ChangeEvent
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for change event")
		}
	}
}

func TestPublisher_History(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)
	pub := redis.NewFromClient(client, redis.WithHistory("changes:recent", 2))

	for _, model := range []string{"a", "b", "c"} {
		require.NoError(t, pub.Publish(ctx, []domain.ChangeEvent{{ModelID: model, Kind: domain.ChangeModel}}))
	}

	recent, err := pub.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].ModelID)
	assert.Equal(t, "c", recent[1].ModelID)
}

func TestPublisher_EmptyBatch(t *testing.T) {
	pub := redis.NewFromClient(newClient(t))
	assert.NoError(t, pub.Publish(context.Background(), nil))
}

func TestLocker_Exclusive(t *testing.T) {
	ctx := context.Background()
	locker := redis.NewLocker(newClient(t), "pathflow:")

	unlock, err := locker.Lock(ctx, "session", time.Second)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "session", time.Second)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)

	require.NoError(t, unlock(ctx))

	unlock, err = locker.Lock(ctx, "session", time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock(ctx))
}
