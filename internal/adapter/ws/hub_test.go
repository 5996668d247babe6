package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace-backoffice/internal/core/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.Serve))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dialTestHub(t, hub)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	notice := domain.NewNotice(domain.NoticeOrderApproved, domain.EntityOrder, uuid.New())
	hub.Broadcast(notice)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got domain.Notice
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, domain.NoticeOrderApproved, got.Kind)
	assert.Equal(t, notice.EntityID, got.EntityID)
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn1 := dialTestHub(t, hub)
	conn2 := dialTestHub(t, hub)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 2
	}, time.Second, 10*time.Millisecond)

	notice := domain.NewNotice(domain.NoticeNewProductAdded, domain.EntityProduct, uuid.New())
	hub.Broadcast(notice)

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)

		var got domain.Notice
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, domain.NoticeNewProductAdded, got.Kind)
	}
}

func TestHub_DisconnectRemovesClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dialTestHub(t, hub)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_SlowClientDroppedWithoutBlocking(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	// A client with no write pump: its buffer fills and never drains.
	slow := &client{send: make(chan []byte, sendBuffer)}
	hub.add(slow)

	notice := domain.NewNotice(domain.NoticePayoutUpdated, domain.EntityPayout, uuid.New())

	done := make(chan struct{})
	go func() {
		defer close(done)
		// One more broadcast than the buffer holds; the overflow must
		// drop the client instead of waiting for it.
		for i := 0; i < sendBuffer+1; i++ {
			hub.Broadcast(notice)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}

	assert.Equal(t, 0, hub.ClientCount())

	// The dropped client's queue was closed after the buffered
	// notices it never drained.
	delivered := 0
	for range slow.send {
		delivered++
	}
	assert.Equal(t, sendBuffer, delivered)
}

func TestHub_BroadcastWithNoClientsIsNoOp(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	// Should not panic or block.
	hub.Broadcast(domain.NewNotice(domain.NoticeKYCApproved, domain.EntityKYC, uuid.New()))
	assert.Equal(t, 0, hub.ClientCount())
}
