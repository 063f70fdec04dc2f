package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublisherAppendsNotice(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	pub := NewEventPublisher(client, "homesentry:events", zap.NewNop())

	localTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	err := pub.Publish(context.Background(), "climate_readings", 42, "AA:BB:CC:DD:EE:FF", localTime)
	require.NoError(t, err)

	msgs, err := client.XRange(context.Background(), "homesentry:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var notice StreamNotice
	err = json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &notice)
	require.NoError(t, err)

	assert.Equal(t, "climate_readings", notice.Stream)
	assert.Equal(t, int64(42), notice.ID)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", notice.Mac)
	assert.Equal(t, "2024-01-15T10:30:00Z", notice.LocalTime)
}

func TestPublisherReturnsErrorWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	mr.Close()

	pub := NewEventPublisher(client, "homesentry:events", zap.NewNop())

	err := pub.Publish(context.Background(), "event_log", 1, "AA:BB:CC:DD:EE:FF", time.Now())
	assert.Error(t, err)
}
