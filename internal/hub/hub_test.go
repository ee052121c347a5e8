package hub

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_InitialAndBroadcast(t *testing.T) {
	h := New(func() Message {
		return Message{Type: "rooms", AnimationSpeed: 1000, Data: []string{"Kitchen"}}
	}, nil)
	server := httptest.NewServer(h)
	defer server.Close()
	defer h.Close()

	conn := dial(t, server)
	defer conn.Close()

	initial := readMessage(t, conn)
	assert.Equal(t, "rooms", initial.Type)
	assert.Equal(t, 1000, initial.AnimationSpeed)
	assert.Equal(t, []any{"Kitchen"}, initial.Data)

	require.Eventually(t, func() bool { return h.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Broadcast(Message{Type: "rooms", AnimationSpeed: 500, Data: []string{"Office"}})
	update := readMessage(t, conn)
	assert.Equal(t, 500, update.AnimationSpeed)
	assert.Equal(t, []any{"Office"}, update.Data)
}

func TestHub_ClientDisconnect(t *testing.T) {
	h := New(nil, nil)
	server := httptest.NewServer(h)
	defer server.Close()
	defer h.Close()

	conn := dial(t, server)
	require.Eventually(t, func() bool { return h.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return h.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	h := New(nil, nil)
	server := httptest.NewServer(h)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()
	require.Eventually(t, func() bool { return h.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Close()
	assert.Equal(t, 0, h.Count())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "expected going-away close, got %v", err)
}
