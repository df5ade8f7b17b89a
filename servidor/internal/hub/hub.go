// Package hub mantém as conexões websocket dos clientes e responde
// os pedidos de região e de checksum.
package hub

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"VoxelStream/servidor/internal/regions"
	"VoxelStream/shared/proto/regionnet"
	"VoxelStream/shared/util"

	"github.com/gorilla/websocket"
)

// RegionSource fornece os bytes de uma região e confere checksums.
type RegionSource interface {
	Region(coord util.RegionCoord) ([]byte, error)
	Verify(coord util.RegionCoord, checksum uint32) (bool, error)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub gerencia as conexões WebSocket ativas
type Hub struct {
	source  RegionSource
	metrics *regions.Metrics

	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.Mutex
	wg      sync.WaitGroup
}

func New(source RegionSource, metrics *regions.Metrics) *Hub {
	if metrics == nil {
		metrics = regions.NewMetrics(nil)
	}
	return &Hub{
		source:  source,
		metrics: metrics,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP faz o upgrade e lê mensagens até a conexão cair.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub] Erro no upgrade do WebSocket: %v", err)
		return
	}

	h.wg.Add(1)
	h.register(conn)
	defer func() {
		h.unregister(conn)
		h.wg.Done()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[Hub] Erro ao ler mensagem de %s: %v", conn.RemoteAddr(), err)
			}
			return
		}

		var env regionnet.Envelope
		if err := env.Unmarshal(message); err != nil {
			log.Printf("[Hub] Erro ao desempacotar envelope: %v", err)
			continue
		}
		h.handleMessage(conn, &env)
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()
	h.metrics.Clients.Inc()
	log.Printf("[Hub] Cliente registrado: %s", conn.RemoteAddr())
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if !ok {
		return
	}

	lock.Lock()
	conn.Close()
	lock.Unlock()
	h.metrics.Clients.Dec()
	log.Printf("[Hub] Cliente desregistrado: %s", conn.RemoteAddr())
}

// Clients devolve o número de conexões abertas.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close derruba todas as conexões e espera os handlers terminarem.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = h.WriteControl(c, websocket.FormatCloseMessage(websocket.CloseGoingAway, "servidor encerrando"))
		c.Close()
	}
	h.wg.Wait()
}

// WriteSafe garante que apenas uma goroutine escreva no WebSocket por vez
func (h *Hub) WriteSafe(conn *websocket.Conn, messageType int, data []byte) error {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("cliente %s não encontrado no hub", conn.RemoteAddr())
	}

	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(messageType, data)
}

// WriteControl envia um frame de controle respeitando o lock de escrita.
func (h *Hub) WriteControl(conn *websocket.Conn, data []byte) error {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	h.mu.Unlock()
	if !ok {
		return nil
	}

	lock.Lock()
	defer lock.Unlock()
	return conn.WriteControl(websocket.CloseMessage, data, time.Now().Add(time.Second))
}

func (h *Hub) send(conn *websocket.Conn, msg regionnet.Message) {
	if err := h.WriteSafe(conn, websocket.BinaryMessage, regionnet.Wrap(msg)); err != nil {
		log.Printf("[Hub] Erro ao enviar %s: %v", msg.Type(), err)
	}
}

func (h *Hub) handleMessage(conn *websocket.Conn, env *regionnet.Envelope) {
	switch env.Type {
	case regionnet.TypeRegionRequest:
		var req regionnet.RegionRequest
		if err := req.Unmarshal(env.Payload); err != nil {
			log.Printf("[Hub] Erro ao ler RegionRequest: %v", err)
			return
		}
		data, err := h.source.Region(req.Coord)
		if err != nil {
			// Sem resposta: o cliente pede de novo depois do timeout
			log.Printf("[Hub] Erro ao montar região %v: %v", req.Coord, err)
			return
		}
		h.send(conn, &regionnet.RegionPayload{Coord: req.Coord, Data: data})

	case regionnet.TypeChecksumRequest:
		var req regionnet.ChecksumRequest
		if err := req.Unmarshal(env.Payload); err != nil {
			log.Printf("[Hub] Erro ao ler ChecksumRequest: %v", err)
			return
		}
		match, err := h.source.Verify(req.Coord, req.Checksum)
		if err != nil {
			log.Printf("[Hub] Erro ao verificar checksum de %v: %v", req.Coord, err)
			return
		}
		h.send(conn, &regionnet.ChecksumReply{Coord: req.Coord, Match: match})

	default:
		log.Printf("[Hub] Tipo de mensagem ignorado: %s", env.Type)
	}
}
