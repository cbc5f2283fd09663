package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Body string
	Seq  int
}

func newCol() *Collection[item] {
	return NewCollection(
		func(it item) string { return it.ID },
		func(a, b item) bool { return a.Seq < b.Seq },
	)
}

func TestApplyLiveDeduplicatesByID(t *testing.T) {
	c := newCol()
	c.ApplyLive(item{ID: "m1", Body: "hello", Seq: 1})
	c.ApplyLive(item{ID: "m1", Body: "hello edited", Seq: 1})
	assert.Equal(t, 1, c.Len())
	got, ok := c.Get("m1")
	require.True(t, ok)
	assert.Equal(t, "hello edited", got.Body)
}

func TestReplaceAllHealsMissedEvents(t *testing.T) {
	c := newCol()
	// live channel delivered only m2; the poll has the authoritative list
	c.ApplyLive(item{ID: "m2", Seq: 2})
	c.ReplaceAll([]item{{ID: "m1", Seq: 1}, {ID: "m2", Seq: 2}, {ID: "m3", Seq: 3}})
	assert.Equal(t, 3, c.Len())

	// a record the server no longer returns disappears
	c.ReplaceAll([]item{{ID: "m1", Seq: 1}})
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("m2")
	assert.False(t, ok)
}

func TestItemsOrdered(t *testing.T) {
	c := newCol()
	c.ApplyLive(item{ID: "b", Seq: 2})
	c.ApplyLive(item{ID: "a", Seq: 1})
	c.ApplyLive(item{ID: "c", Seq: 3})
	got := c.Items()
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestSameItemFromPushAndPollCollapses(t *testing.T) {
	c := newCol()
	c.ApplyLive(item{ID: "m1", Seq: 1})
	c.ReplaceAll([]item{{ID: "m1", Seq: 1}})
	assert.Equal(t, 1, c.Len())
}

func TestRunOnceReplacesCollection(t *testing.T) {
	c := newCol()
	c.ApplyLive(item{ID: "stale", Seq: 0})
	r := NewReconciler(c, func(context.Context) ([]item, error) {
		return []item{{ID: "fresh", Seq: 1}}, nil
	}, 0, nil)

	require.NoError(t, r.RunOnce(context.Background()))
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestRunOnceKeepsLastGoodViewOnError(t *testing.T) {
	c := newCol()
	c.ReplaceAll([]item{{ID: "m1", Seq: 1}})

	var reported error
	r := NewReconciler(c, func(context.Context) ([]item, error) {
		return nil, errors.New("fetch failed")
	}, 0, func(err error) { reported = err })

	err := r.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Error(t, reported)
	assert.Equal(t, 1, c.Len())
}
