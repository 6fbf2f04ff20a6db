package logctx

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_Get(t *testing.T) {
	ctx := Set(context.Background(), "k", "v")

	v, ok := Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestSet_OverwritesExistingKey(t *testing.T) {
	ctx := Set(context.Background(), "userId", "1")
	ctx = Set(ctx, "userId", "2")

	v, _ := Get(ctx, "userId")
	assert.Equal(t, "2", v)
	assert.Len(t, Snapshot(ctx), 1)
}

// TestSet_DoesNotMutateParent проверяет изоляцию: дочерний context не меняет родительский.
func TestSet_DoesNotMutateParent(t *testing.T) {
	parent := Set(context.Background(), "a", "1")
	child := Set(parent, "b", "2")

	_, ok := Get(parent, "b")
	assert.False(t, ok, "родительский context не должен видеть поля дочернего")

	v, ok := Get(child, "a")
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestClear_RemovesAllKeys(t *testing.T) {
	ctx := Set(context.Background(), "k", "v")
	ctx = Set(ctx, "other", "x")

	ctx = Clear(ctx)

	_, ok := Get(ctx, "k")
	assert.False(t, ok)
	_, ok = Get(ctx, "other")
	assert.False(t, ok)
	assert.Empty(t, Snapshot(ctx))
}

func TestClear_EmptyContext_NoOp(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, ctx, Clear(ctx), "очистка пустого контекста не должна создавать новый context")
	assert.Empty(t, Snapshot(Clear(Clear(ctx))))
}

func TestSetAll(t *testing.T) {
	ctx := Set(context.Background(), "operation", "old")
	ctx = SetAll(ctx, map[string]string{"userId": "123", "operation": "test"})

	assert.Equal(t, Fields{"userId": "123", "operation": "test"}, Snapshot(ctx))
}

func TestSetAll_EmptyMap_ReturnsSameContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, SetAll(ctx, nil))
}

func TestSnapshot_IsCopy(t *testing.T) {
	ctx := Set(context.Background(), "k", "v")

	snap := Snapshot(ctx)
	snap["k"] = "changed"

	v, _ := Get(ctx, "k")
	assert.Equal(t, "v", v, "изменение снимка не должно влиять на context")
}

func TestAttrs_SortedByKey(t *testing.T) {
	ctx := SetAll(context.Background(), map[string]string{"b": "2", "a": "1", "c": "3"})

	attrs := Attrs(ctx)

	require.Len(t, attrs, 3)
	assert.Equal(t, slog.String("a", "1"), attrs[0])
	assert.Equal(t, slog.String("b", "2"), attrs[1])
	assert.Equal(t, slog.String("c", "3"), attrs[2])
}

func TestNilContext(t *testing.T) {
	var ctx context.Context

	_, ok := Get(ctx, "k")
	assert.False(t, ok)
	assert.Empty(t, Snapshot(ctx))
	assert.Nil(t, Attrs(ctx))

	ctx = Set(ctx, "k", "v")
	v, _ := Get(ctx, "k")
	assert.Equal(t, "v", v)
}

// TestConcurrentChains_Independent проверяет что параллельные цепочки не видят поля друг друга.
func TestConcurrentChains_Independent(t *testing.T) {
	base := Set(context.Background(), "shared", "yes")

	var wg sync.WaitGroup
	results := make([]Fields, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx := Set(base, "worker", string(rune('A'+i%26)))
			results[i] = Snapshot(ctx)
		}(i)
	}
	wg.Wait()

	for i, snap := range results {
		assert.Equal(t, string(rune('A'+i%26)), snap["worker"])
		assert.Equal(t, "yes", snap["shared"])
	}
	_, ok := Get(base, "worker")
	assert.False(t, ok)
}
