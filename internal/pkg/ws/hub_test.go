package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// dialTestClient 建立一条真实的 WebSocket 连接并注册到 hub
func dialTestClient(t *testing.T, hub *Hub, userID int64) (*Client, *websocket.Conn, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		client := &Client{UserID: userID, Conn: conn}
		hub.Register(client)
	}))

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	// 等待服务端完成注册
	deadline := time.Now().Add(time.Second)
	for !hub.IsOnline(userID) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, hub.IsOnline(userID))

	var registered *Client
	hub.mu.RLock()
	for c := range hub.clients[userID] {
		registered = c
	}
	hub.mu.RUnlock()

	cleanup := func() {
		clientConn.Close()
		server.Close()
	}
	return registered, clientConn, cleanup
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_IsOnline_NoConnections(t *testing.T) {
	hub := NewHub()

	assert.False(t, hub.IsOnline(123))
}

func TestHub_SendToUser_UserNotOnline(t *testing.T) {
	hub := NewHub()

	msg := &Message{
		Type: "balance_changed",
		Data: map[string]interface{}{"new_balance": 40},
	}

	// 用户不在线不算错误
	err := hub.SendToUser(123, msg)
	assert.NoError(t, err)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client, _, cleanup := dialTestClient(t, hub, 42)
	defer cleanup()

	assert.True(t, hub.IsOnline(42))
	assert.Equal(t, 1, hub.ConnectionCount())

	hub.Unregister(client)
	assert.False(t, hub.IsOnline(42))
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_SendToUser_Delivers(t *testing.T) {
	hub := NewHub()

	_, clientConn, cleanup := dialTestClient(t, hub, 7)
	defer cleanup()

	msg := &Message{
		Type: "balance_changed",
		Data: map[string]interface{}{"new_balance": float64(150)},
	}
	err := hub.SendToUser(7, msg)
	require.NoError(t, err)

	clientConn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := clientConn.ReadMessage()
	require.NoError(t, err)

	var received Message
	require.NoError(t, json.Unmarshal(data, &received))
	assert.Equal(t, "balance_changed", received.Type)

	payload, ok := received.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(150), payload["new_balance"])
}

func TestHub_MultipleConnectionsPerUser(t *testing.T) {
	hub := NewHub()

	_, conn1, cleanup1 := dialTestClient(t, hub, 9)
	defer cleanup1()
	_, conn2, cleanup2 := dialTestClient(t, hub, 9)
	defer cleanup2()

	assert.Equal(t, 2, hub.ConnectionCount())

	msg := &Message{Type: "reward_granted", Data: map[string]interface{}{"amount": float64(50)}}
	require.NoError(t, hub.SendToUser(9, msg))

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var received Message
		require.NoError(t, json.Unmarshal(data, &received))
		assert.Equal(t, "reward_granted", received.Type)
	}
}

func TestHub_SendToUser_EvictsBrokenConnection(t *testing.T) {
	hub := NewHub()

	client, _, cleanup := dialTestClient(t, hub, 11)
	defer cleanup()

	// 服务端连接断开后，下一次推送应把它移出 Hub
	client.Conn.Close()

	msg := &Message{Type: "balance_changed", Data: map[string]interface{}{"new_balance": float64(10)}}
	require.NoError(t, hub.SendToUser(11, msg))

	assert.False(t, hub.IsOnline(11))
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestMessage_Structure(t *testing.T) {
	msg := &Message{
		Type: "balance_changed",
		Data: map[string]interface{}{
			"tx_type":     "CONSUMPTION",
			"new_balance": 90,
		},
	}

	assert.Equal(t, "balance_changed", msg.Type)
	data := msg.Data.(map[string]interface{})
	assert.Equal(t, "CONSUMPTION", data["tx_type"])
	assert.Equal(t, 90, data["new_balance"])
}
