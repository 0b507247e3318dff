package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/layer-3/freelance/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillPublisher_Publish(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, TopicLogout)
	require.NoError(t, err)

	occurred := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := NewWatermillPublisher(pubSub)
	err = p.Publish(ctx, core.AuthEvent{
		Type:       core.EventLogout,
		UserID:     "user-1",
		Address:    "0xabc",
		Role:       core.RoleClient,
		TokenID:    "jti-1",
		OccurredAt: occurred,
	})
	require.NoError(t, err)

	select {
	case msg := <-messages:
		msg.Ack()
		var payload AuthEventPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "logout", payload.Type)
		assert.Equal(t, "0xabc", payload.Address)
		assert.Equal(t, "jti-1", payload.TokenID)
		assert.True(t, occurred.Equal(payload.OccurredAt))
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
}

func TestWatermillPublisher_UnknownType(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	err := NewWatermillPublisher(pubSub).Publish(context.Background(), core.AuthEvent{Type: "bogus"})
	assert.Error(t, err)
}

func TestTopic(t *testing.T) {
	for typ, want := range map[core.EventType]string{
		core.EventLogin:  TopicLogin,
		core.EventSignup: TopicSignup,
		core.EventLogout: TopicLogout,
	} {
		got, err := Topic(typ)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
