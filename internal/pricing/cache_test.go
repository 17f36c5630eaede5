package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roofbot/internal/models"
	"roofbot/internal/storage"
)

type countingLookuper struct {
	calls  int
	result string
	err    error
}

func (l *countingLookuper) Lookup(ctx context.Context, f models.Filter) (string, error) {
	l.calls++
	return l.result, l.err
}

type brokenCache struct{}

func (brokenCache) GetLookup(context.Context, string, time.Time) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (brokenCache) PutLookup(context.Context, string, string, time.Time) error {
	return errors.New("disk on fire")
}

func newCacheDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCachedGatewayServesRepeatsFromCache(t *testing.T) {
	next := &countingLookuper{result: "*42* تومان"}
	g := NewCachedGateway(next, newCacheDB(t), time.Hour, discardLogger())
	f := baseFilter(models.CategoryLand)

	for i := 0; i < 3; i++ {
		res, err := g.Lookup(context.Background(), f)
		require.NoError(t, err)
		assert.Equal(t, "*42* تومان", res)
	}
	assert.Equal(t, 1, next.calls)

	f.Days = 46
	_, err := g.Lookup(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedGatewayExpires(t *testing.T) {
	next := &countingLookuper{result: "r"}
	g := NewCachedGateway(next, newCacheDB(t), time.Hour, discardLogger())
	now := time.Now()
	g.now = func() time.Time { return now }
	f := baseFilter(models.CategoryLand)

	_, err := g.Lookup(context.Background(), f)
	require.NoError(t, err)

	g.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = g.Lookup(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedGatewayDoesNotCacheFailures(t *testing.T) {
	next := &countingLookuper{err: &LookupError{Op: "fetch", Err: errors.New("down")}}
	g := NewCachedGateway(next, newCacheDB(t), time.Hour, discardLogger())
	f := baseFilter(models.CategoryLand)

	for i := 0; i < 2; i++ {
		_, err := g.Lookup(context.Background(), f)
		var lerr *LookupError
		assert.ErrorAs(t, err, &lerr)
	}
	assert.Equal(t, 2, next.calls)
}

func TestCachedGatewayBypassesBrokenCache(t *testing.T) {
	next := &countingLookuper{result: "r"}
	g := NewCachedGateway(next, brokenCache{}, time.Hour, discardLogger())

	res, err := g.Lookup(context.Background(), baseFilter(models.CategoryLand))
	require.NoError(t, err)
	assert.Equal(t, "r", res)
}
