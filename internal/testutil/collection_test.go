package testutil

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/topic"
)

func TestFakeCollection_SeedAndList(t *testing.T) {
	f := NewFakeCollection("Go", "Rust")

	topics, err := f.List(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 2)

	assert.Equal(t, int64(1), *topics[0].ID)
	assert.Equal(t, "Go", topics[0].Title)
	assert.Equal(t, "2024-01-01T00:00:01Z", topics[0].CreatedAt)
	assert.Equal(t, int64(2), *topics[1].ID)
	assert.Equal(t, "2024-01-01T00:00:02Z", topics[1].CreatedAt)
	assert.Equal(t, 1, f.Calls(OpList))
}

func TestFakeCollection_UpsertCreatesAndUpdates(t *testing.T) {
	f := NewFakeCollection("Go")
	ctx := context.Background()

	err := f.Upsert(ctx, []topic.Draft{topic.NewDraft("Rust"), topic.UpdateDraft(1, "Golang")})
	require.NoError(t, err)

	topics, err := f.List(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "Golang", topics[0].Title)
	assert.Equal(t, "2024-01-01T00:00:01Z", topics[0].CreatedAt)
	assert.Equal(t, "2024-01-01T00:00:03Z", topics[0].UpdatedAt)
	assert.Equal(t, "Rust", topics[1].Title)
	assert.Len(t, f.Upserts(), 1)
}

func TestFakeCollection_UpsertUnknownIDRejectsBatch(t *testing.T) {
	f := NewFakeCollection("Go")

	err := f.Upsert(context.Background(), []topic.Draft{topic.NewDraft("Rust"), topic.UpdateDraft(9, "x")})

	var se *topic.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "topic 9 not found", se.Message)
	assert.Equal(t, 1, f.Len())
	assert.Empty(t, f.Upserts())
}

func TestFakeCollection_Delete(t *testing.T) {
	f := NewFakeCollection("A", "B", "C")

	require.NoError(t, f.Delete(context.Background(), []int64{1, 3, 42}))
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, [][]int64{{1, 3, 42}}, f.Deletes())
}

func TestFakeCollection_FailNextIsConsumed(t *testing.T) {
	f := NewFakeCollection("A")
	ctx := context.Background()
	f.FailNext(OpDelete, http.StatusConflict, "in use")

	err := f.Delete(ctx, []int64{1})
	var se *topic.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "in use", se.Message)
	assert.Equal(t, 1, f.Len())

	require.NoError(t, f.Delete(ctx, []int64{1}))
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 2, f.Calls(OpDelete))
}

func TestFakeCollection_FailNextWith(t *testing.T) {
	f := NewFakeCollection()
	boom := errors.New("connection reset")
	f.FailNextWith(OpList, boom)

	_, err := f.List(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFakeCollection_CancelledContext(t *testing.T) {
	f := NewFakeCollection("A")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFakeCollection_WithClient(t *testing.T) {
	f := NewFakeCollection("A", "B", "C")
	c := topic.NewClient(f, nil)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	c.ToggleSelection(3)
	f.FailNext(OpDelete, http.StatusConflict, "in use")

	err := c.DeleteSelected(ctx)
	assert.EqualError(t, err, "in use")
	assert.True(t, c.IsSelected(3))
	assert.Len(t, c.Topics(), 3)
}

func TestParseOp(t *testing.T) {
	op, err := ParseOp("upsert")
	require.NoError(t, err)
	assert.Equal(t, OpUpsert, op)

	_, err = ParseOp("patch")
	assert.Error(t, err)
}
