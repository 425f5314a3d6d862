//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Domenick1991/airreserve/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	require.NoError(t, client.FlushDB(context.Background()).Err())
	c := NewRedisCacheFromClient(client, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_FillRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	listing := []domain.Flight{{FlightNumber: "AA100", TotalTickets: 2, AvailableTickets: 2}}

	generation, err := c.FlightsGeneration(ctx)
	require.NoError(t, err)
	assert.Zero(t, generation)

	stored, err := c.SetFlights(ctx, generation, listing)
	require.NoError(t, err)
	assert.True(t, stored)

	cached, err := c.GetFlights(ctx)
	require.NoError(t, err)
	assert.Equal(t, listing, cached)
}

func TestRedisCache_FillAfterInvalidationIsRejected(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	generation, err := c.FlightsGeneration(ctx)
	require.NoError(t, err)

	// a reservation commits between the database read and the fill
	require.NoError(t, c.InvalidateFlights(ctx))

	stored, err := c.SetFlights(ctx, generation, []domain.Flight{{FlightNumber: "AA100", TotalTickets: 2, AvailableTickets: 2}})
	require.NoError(t, err)
	assert.False(t, stored)

	cached, err := c.GetFlights(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)

	next, err := c.FlightsGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, generation+1, next)
}
