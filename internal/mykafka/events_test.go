package mykafka

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_FiltersByTopic(t *testing.T) {
	var r Recorder
	uid := uuid.New()
	ctx := context.Background()

	require.NoError(t, r.PublishEvent(ctx, TopicCart, uid.String(), NewEvent("cart_item_added", uid, uuid.New(), nil)))
	require.NoError(t, r.PublishEvent(ctx, TopicOrder, uid.String(), NewEvent("order_created", uid, uuid.New(), nil)))

	evs := r.Events(TopicOrder)
	require.Len(t, evs, 1)
	assert.Equal(t, "order_created", evs[0].Type)
	assert.Equal(t, uid, evs[0].UserID)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	require.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}
