//go:build integration

package notifier_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatheusPlinio/DotWysion/internal/attendance/models"
	"github.com/MatheusPlinio/DotWysion/internal/notifier"
	"github.com/MatheusPlinio/DotWysion/pkg/testutil/containers"
)

func TestRedisPublisherAgainstRealRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	sub := rc.Client.Subscribe(ctx, notifier.DefaultChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	publisher := notifier.NewRedis(rc.Client, "")
	event := models.Event{
		ID:         7,
		UserID:     "u1",
		UserName:   "Test User",
		Kind:       models.KindBreakEnd,
		OccurredAt: time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.Publish(ctx, event))

	msg, err := sub.ReceiveTimeout(ctx, 5*time.Second)
	require.NoError(t, err)
	payload, ok := msg.(*redis.Message)
	require.True(t, ok)

	var got models.Event
	require.NoError(t, json.Unmarshal([]byte(payload.Payload), &got))
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, models.KindBreakEnd, got.Kind)
}
