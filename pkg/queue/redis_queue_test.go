package queue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := NewRedisQueueWithClient(client, "test:audit")
	t.Cleanup(func() { _ = q.Close() })
	return q, mr
}

func TestRedisQueue_EnqueueAndRecent(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &EventMessage{EventID: "e1", Action: "rbac.map", Entity: "rbac", ActorID: 1}))
	require.NoError(t, q.Enqueue(ctx, &EventMessage{EventID: "e2", Action: "rbac.unmap", Entity: "rbac", ActorID: 1}))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	events, err := q.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[0].EventID)
	assert.Equal(t, "e1", events[1].EventID)
	assert.NotZero(t, events[0].Created)
}

func TestRedisQueue_TrimsToMaxEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := newWithClient(client, "test:audit", 3)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, q.Enqueue(ctx, &EventMessage{EventID: id, Action: "role.create", Entity: "role"}))
	}

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	events, err := q.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "e", events[0].EventID)
	assert.Equal(t, "c", events[2].EventID)
}

func TestRedisQueue_RecentNonPositive(t *testing.T) {
	q, _ := newTestQueue(t)
	events, err := q.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRedisQueue_EnqueueFailsWhenServerDown(t *testing.T) {
	q, mr := newTestQueue(t)
	mr.Close()

	err := q.Enqueue(context.Background(), &EventMessage{EventID: "x", Action: "role.delete", Entity: "role"})
	assert.Error(t, err)
}
