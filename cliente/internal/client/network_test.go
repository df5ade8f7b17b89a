package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"VoxelStream/shared/proto/regionnet"
	"VoxelStream/shared/util"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer responde pedidos de região com o próprio x como dado e
// considera válido apenas o checksum 42.
func echoServer(t *testing.T) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env regionnet.Envelope
			if err := env.Unmarshal(data); err != nil {
				t.Errorf("envelope: %v", err)
				return
			}
			var reply regionnet.Message
			switch env.Type {
			case regionnet.TypeRegionRequest:
				var req regionnet.RegionRequest
				if err := req.Unmarshal(env.Payload); err != nil {
					t.Errorf("request: %v", err)
					return
				}
				reply = &regionnet.RegionPayload{Coord: req.Coord, Data: []byte{byte(req.Coord.X)}}
			case regionnet.TypeChecksumRequest:
				var req regionnet.ChecksumRequest
				if err := req.Unmarshal(env.Payload); err != nil {
					t.Errorf("checksum: %v", err)
					return
				}
				reply = &regionnet.ChecksumReply{Coord: req.Coord, Match: req.Checksum == 42}
			default:
				continue
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, regionnet.Wrap(reply)); err != nil {
				return
			}
		}
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestRequestRegionRoundTrip(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	type region struct {
		coord util.RegionCoord
		data  []byte
	}
	regions := make(chan region, 4)
	checks := make(chan bool, 4)

	c := NewNetworkClient(wsURL(srv))
	c.OnRegion = func(coord util.RegionCoord, data []byte) { regions <- region{coord, data} }
	c.OnChecksum = func(_ util.RegionCoord, match bool) { checks <- match }
	require.NoError(t, c.Connect())
	defer c.Close()
	assert.True(t, c.IsConnected())

	want := util.NewRegionCoord(7, -2, 3)
	require.NoError(t, c.RequestRegion(want))
	select {
	case got := <-regions:
		assert.Equal(t, want, got.coord)
		assert.Equal(t, []byte{7}, got.data)
	case <-time.After(2 * time.Second):
		t.Fatal("região não chegou")
	}

	require.NoError(t, c.VerifyChecksum(want, 42))
	require.NoError(t, c.VerifyChecksum(want, 1))
	assert.True(t, <-checks)
	assert.False(t, <-checks)
}

func TestSendWithoutConnection(t *testing.T) {
	c := NewNetworkClient("ws://127.0.0.1:1/ws")
	assert.ErrorIs(t, c.RequestRegion(util.RegionCoord{}), ErrNotConnected)
	assert.NoError(t, c.Close())
}

func TestConnectFailsAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()

	c := NewNetworkClient(url)
	c.MaxRetries = 2
	c.RetryDelay = time.Millisecond
	assert.Error(t, c.Connect())
	assert.False(t, c.IsConnected())
}

func TestDisconnectCallback(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Servidor derruba a conexão logo depois do handshake
		conn.Close()
	}))
	defer srv.Close()

	disconnected := make(chan struct{})
	c := NewNetworkClient(wsURL(srv))
	c.OnDisconnect = func(error) { close(disconnected) }
	require.NoError(t, c.Connect())

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("desconexão não notificada")
	}
	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.RequestRegion(util.RegionCoord{}), ErrNotConnected)
}

func TestCloseIsIdempotent(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	disconnects := 0
	c := NewNetworkClient(wsURL(srv))
	c.OnDisconnect = func(error) { disconnects++ }
	require.NoError(t, c.Connect())

	_ = c.Close()
	assert.False(t, c.IsConnected())
	assert.Equal(t, 1, disconnects)

	// A segunda chamada não toca mais na conexão antiga
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.Equal(t, 1, disconnects)
	assert.ErrorIs(t, c.RequestRegion(util.RegionCoord{}), ErrNotConnected)
}
