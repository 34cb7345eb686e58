package mykafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NoBrokersIsNop(t *testing.T) {
	p := New(nil, "user_events")
	_, ok := p.(NopPublisher)
	require.True(t, ok)

	assert.NoError(t, p.PublishEvent(context.Background(), "1", NewUserEvent(EventUserLoggedIn, 1, "alice")))
	assert.NoError(t, p.Close())
}

func TestNew_WithBrokers(t *testing.T) {
	p := New([]string{"localhost:9092"}, "user_events")
	prod, ok := p.(*Producer)
	require.True(t, ok)

	assert.Equal(t, "user_events", prod.writer.Topic)
	assert.Equal(t, "localhost:9092", prod.writer.Addr.String())
	assert.NoError(t, prod.Close())
}

func TestEncodeMessage(t *testing.T) {
	ev := NewUserEvent(EventUserRegistered, 7, "alice")

	msg, err := encodeMessage("7", ev)
	require.NoError(t, err)
	assert.Equal(t, []byte("7"), msg.Key)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "user_registered", decoded["type"])
	assert.EqualValues(t, 7, decoded["user_id"])
	assert.Equal(t, "alice", decoded["username"])
	assert.NotEmpty(t, decoded["id"])
}

func TestEncodeMessage_Unmarshalable(t *testing.T) {
	_, err := encodeMessage("k", map[string]any{"bad": make(chan int)})
	require.Error(t, err)
}

func TestNewUserEvent(t *testing.T) {
	a := NewUserEvent(EventUserLoggedIn, 1, "alice")
	b := NewUserEvent(EventUserLoggedIn, 1, "alice")

	assert.NotEqual(t, a.ID, b.ID)
	assert.WithinDuration(t, time.Now().UTC(), a.OccurredAt, time.Second)
}
