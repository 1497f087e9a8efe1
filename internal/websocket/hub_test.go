package websocket

import (
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestHub_AddRemove(t *testing.T) {
	defer goleak.VerifyNone(t)

	var last atomic.Int64
	hub := NewHub(func(total int) { last.Store(int64(total)) })
	go hub.Run()

	alice1 := NewClient(nil, "alice")
	alice2 := NewClient(nil, "alice")
	bob := NewClient(nil, "bob")

	hub.Add(alice1)
	hub.Add(alice2)
	hub.Add(bob)
	assert.Equal(t, 3, hub.Count())
	assert.Equal(t, int64(3), last.Load())

	hub.Remove(alice1)
	hub.Remove(alice1)
	assert.Equal(t, 2, hub.Count())

	hub.Stop()
	assert.Equal(t, int64(0), last.Load())
	assert.Equal(t, 0, hub.Count())

	select {
	case <-bob.Done():
	default:
		t.Fatal("expected open clients to be closed on stop")
	}

	// Calls after Stop must not block.
	late := NewClient(nil, "carol")
	hub.Add(late)
	hub.Remove(late)
	hub.Stop()
	<-late.Done()
}

func TestClient_Queue(t *testing.T) {
	c := NewClient(nil, "alice")
	for i := 0; i < sendBuffer; i++ {
		require.True(t, c.Queue([]byte("x")))
	}
	assert.False(t, c.Queue([]byte("overflow")))

	c.Close()
	c.Close()
	assert.False(t, c.Queue([]byte("closed")))
}

func TestMessages(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal(NewChatResponseMessage("alice", "Echo from bot to alice: hi"), &msg))
	assert.Equal(t, ActionChatResponse, msg.Action)

	var payload ChatResponsePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, ChatResponsePayload{User: "alice", Response: "Echo from bot to alice: hi"}, payload)

	require.NoError(t, json.Unmarshal(NewErrorMessage("boom"), &msg))
	assert.Equal(t, ActionError, msg.Action)
	assert.JSONEq(t, `{"message":"boom"}`, string(msg.Payload))
}
