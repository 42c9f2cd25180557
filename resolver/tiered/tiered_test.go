package tiered

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihaimyh/billingview/pkg/billing"
	redisresolver "github.com/mihaimyh/billingview/resolver/redis"
)

type countingResolver struct {
	id    string
	err   error
	calls int
}

func (c *countingResolver) ResolveCustomer(context.Context, billing.Caller) (string, error) {
	c.calls++
	return c.id, c.err
}

func setupHot(t *testing.T) (*miniredis.Miniredis, *redisresolver.Resolver) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hot, err := redisresolver.New(client, redisresolver.DefaultConfig())
	require.NoError(t, err)
	return mr, hot
}

func TestNew_RequiresBothTiers(t *testing.T) {
	_, err := New(Config{Cold: &countingResolver{}})
	assert.Error(t, err)

	_, hot := setupHot(t)
	_, err = New(Config{Hot: hot})
	assert.Error(t, err)
}

func TestResolver_ReadThrough(t *testing.T) {
	mr, hot := setupHot(t)
	cold := &countingResolver{id: "cus_cold"}
	r, err := New(Config{Hot: hot, Cold: cold})
	require.NoError(t, err)
	ctx := context.Background()
	caller := billing.Caller{UserID: "user_1"}

	id, err := r.ResolveCustomer(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, "cus_cold", id)
	assert.Equal(t, 1, cold.calls)

	cached, err := mr.Get("billingview:customer:user_1")
	require.NoError(t, err)
	assert.Equal(t, "cus_cold", cached)

	id, err = r.ResolveCustomer(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, "cus_cold", id)
	assert.Equal(t, 1, cold.calls, "second lookup served from hot tier")
}

func TestResolver_ColdNotFound(t *testing.T) {
	_, hot := setupHot(t)
	r, err := New(Config{Hot: hot, Cold: &countingResolver{err: billing.ErrCustomerNotFound}})
	require.NoError(t, err)

	_, err = r.ResolveCustomer(context.Background(), billing.Caller{UserID: "user_1"})
	assert.ErrorIs(t, err, billing.ErrCustomerNotFound)
}

func TestResolver_HotFailureFallsBackToCold(t *testing.T) {
	mr, hot := setupHot(t)
	var cacheErrs []error
	cold := &countingResolver{id: "cus_cold"}
	r, err := New(Config{
		Hot:               hot,
		Cold:              cold,
		CacheErrorHandler: func(err error) { cacheErrs = append(cacheErrs, err) },
	})
	require.NoError(t, err)

	mr.Close()

	id, err := r.ResolveCustomer(context.Background(), billing.Caller{UserID: "user_1"})
	require.NoError(t, err)
	assert.Equal(t, "cus_cold", id)
	assert.Len(t, cacheErrs, 2, "failed read and failed fill are both reported")
}

func TestResolver_ColdErrorPropagates(t *testing.T) {
	_, hot := setupHot(t)
	boom := errors.New("db down")
	r, err := New(Config{Hot: hot, Cold: &countingResolver{err: boom}})
	require.NoError(t, err)

	_, err = r.ResolveCustomer(context.Background(), billing.Caller{UserID: "user_1"})
	assert.ErrorIs(t, err, boom)
}
