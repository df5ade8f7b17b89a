package hub

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"VoxelStream/servidor/internal/regions"
	"VoxelStream/servidor/internal/terrain"
	"VoxelStream/shared/cache"
	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/proto/regionnet"
	"VoxelStream/shared/util"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource devolve o x da coordenada como dado e aceita só o checksum 42.
type fakeSource struct {
	fail bool
}

func (f *fakeSource) Region(coord util.RegionCoord) ([]byte, error) {
	if f.fail {
		return nil, errors.New("falhou")
	}
	return []byte{byte(coord.X)}, nil
}

func (f *fakeSource) Verify(coord util.RegionCoord, checksum uint32) (bool, error) {
	return checksum == 42, nil
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg regionnet.Message) regionnet.Envelope {
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, regionnet.Wrap(msg)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env regionnet.Envelope
	require.NoError(t, env.Unmarshal(data))
	return env
}

func TestHubAnswersRequests(t *testing.T) {
	h := New(&fakeSource{}, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()
	conn := dial(t, srv)

	tests := []struct {
		name string
		msg  regionnet.Message
		want regionnet.Message
	}{
		{
			"região",
			&regionnet.RegionRequest{Coord: util.NewRegionCoord(7, -1, 2)},
			&regionnet.RegionPayload{Coord: util.NewRegionCoord(7, -1, 2), Data: []byte{7}},
		},
		{
			"checksum válido",
			&regionnet.ChecksumRequest{Coord: util.NewRegionCoord(1, 1, 1), Checksum: 42},
			&regionnet.ChecksumReply{Coord: util.NewRegionCoord(1, 1, 1), Match: true},
		},
		{
			"checksum antigo",
			&regionnet.ChecksumRequest{Coord: util.NewRegionCoord(1, 1, 1), Checksum: 41},
			&regionnet.ChecksumReply{Coord: util.NewRegionCoord(1, 1, 1), Match: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := roundTrip(t, conn, tt.msg)
			require.Equal(t, tt.want.Type(), env.Type)
			assert.Equal(t, tt.want.Marshal(), env.Payload)
		})
	}
}

func TestHubSkipsFailedRegion(t *testing.T) {
	src := &fakeSource{fail: true}
	h := New(src, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()
	conn := dial(t, srv)

	// A região falha e não gera resposta; o checksum seguinte chega normalmente
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage,
		regionnet.Wrap(&regionnet.RegionRequest{Coord: util.NewRegionCoord(1, 0, 0)})))
	env := roundTrip(t, conn, &regionnet.ChecksumRequest{Checksum: 42})
	assert.Equal(t, regionnet.TypeChecksumReply, env.Type)
}

func TestHubWithGeneratedRegions(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	metrics := regions.NewMetrics(nil)
	svc := regions.NewService(c, terrain.New(11), metrics)
	h := New(svc, metrics)
	srv := httptest.NewServer(h)
	defer srv.Close()
	conn := dial(t, srv)

	coord := util.NewRegionCoord(0, 1, 0)
	env := roundTrip(t, conn, &regionnet.RegionRequest{Coord: coord})
	require.Equal(t, regionnet.TypeRegionPayload, env.Type)

	var payload regionnet.RegionPayload
	require.NoError(t, payload.Unmarshal(env.Payload))
	assert.Equal(t, coord, payload.Coord)

	hdr, compressed, err := mapdata.DecodeRegion(payload.Data)
	require.NoError(t, err)
	blocks, err := mapdata.DecompressBlocks(compressed)
	require.NoError(t, err)
	assert.Equal(t, mapdata.Checksum(blocks), hdr.Checksum)

	// O checksum que o cliente guardou continua válido
	env = roundTrip(t, conn, &regionnet.ChecksumRequest{Coord: coord, Checksum: hdr.Checksum})
	var reply regionnet.ChecksumReply
	require.NoError(t, reply.Unmarshal(env.Payload))
	assert.True(t, reply.Match)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Clients))
}

func TestHubClose(t *testing.T) {
	h := New(&fakeSource{}, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()
	conn := dial(t, srv)

	// Garante que o handler já registrou a conexão
	roundTrip(t, conn, &regionnet.ChecksumRequest{Checksum: 42})
	assert.Equal(t, 1, h.Clients())

	h.Close()
	assert.Equal(t, 0, h.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
