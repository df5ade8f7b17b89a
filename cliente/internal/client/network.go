package client

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"VoxelStream/shared/proto/regionnet"
	"VoxelStream/shared/util"

	"github.com/gorilla/websocket"
)

// ErrNotConnected é retornado ao enviar sem conexão ativa.
var ErrNotConnected = errors.New("cliente não conectado")

// NetworkClient lida com a comunicação com o servidor de regiões.
//
// Os callbacks rodam na goroutine de leitura: não devem tocar na tabela
// de regiões, só repassar para a thread dona.
type NetworkClient struct {
	conn      *websocket.Conn
	url       string
	connected bool
	mu        sync.RWMutex
	writeMu   sync.Mutex
	done      chan struct{}

	MaxRetries int
	RetryDelay time.Duration

	// Callbacks para o App
	OnRegion     func(coord util.RegionCoord, data []byte)
	OnChecksum   func(coord util.RegionCoord, match bool)
	OnDisconnect func(err error)
}

func NewNetworkClient(url string) *NetworkClient {
	return &NetworkClient{
		url:        url,
		MaxRetries: 10,
		RetryDelay: 2 * time.Second,
	}
}

func (c *NetworkClient) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	var (
		conn *websocket.Conn
		err  error
	)
	for i := 0; i < c.MaxRetries; i++ {
		log.Printf("[Network] Tentativa de conexão %d/%d em %s...", i+1, c.MaxRetries, c.url)
		conn, _, err = dialer.Dial(c.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Network] Servidor ainda não está pronto: %v. Aguardando...", err)
		time.Sleep(c.RetryDelay)
	}
	if err != nil {
		log.Printf("[Network] ERRO CRÍTICO após %d tentativas: %v", c.MaxRetries, err)
		return fmt.Errorf("conectando em %s: %w", c.url, err)
	}
	if conn == nil {
		return fmt.Errorf("conectando em %s: nenhuma tentativa feita", c.url)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.done = make(chan struct{})
	c.mu.Unlock()

	go c.readLoop(conn, c.done)
	return nil
}

func (c *NetworkClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// RequestRegion pede os bytes de uma região.
func (c *NetworkClient) RequestRegion(coord util.RegionCoord) error {
	return c.Send(&regionnet.RegionRequest{Coord: coord})
}

// VerifyChecksum pede ao servidor que compare o checksum local.
func (c *NetworkClient) VerifyChecksum(coord util.RegionCoord, checksum uint32) error {
	return c.Send(&regionnet.ChecksumRequest{Coord: coord, Checksum: checksum})
}

func (c *NetworkClient) Send(msg regionnet.Message) error {
	c.mu.RLock()
	conn, connected := c.conn, c.connected
	c.mu.RUnlock()
	if !connected {
		return ErrNotConnected
	}

	data := regionnet.Wrap(msg)

	c.writeMu.Lock()
	err := conn.WriteMessage(websocket.BinaryMessage, data)
	c.writeMu.Unlock()

	if err != nil {
		log.Printf("[Network] Erro ao enviar mensagem %s: %v", msg.Type(), err)
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		return fmt.Errorf("enviando %s: %w", msg.Type(), err)
	}
	return nil
}

// Close encerra a conexão e espera a goroutine de leitura. Chamadas
// repetidas não fazem nada.
func (c *NetworkClient) Close() error {
	c.mu.Lock()
	conn, done := c.conn, c.done
	c.conn, c.done = nil, nil
	c.connected = false
	c.mu.Unlock()
	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	err := conn.Close()
	<-done
	return err
}

func (c *NetworkClient) readLoop(conn *websocket.Conn, done chan struct{}) {
	var loopErr error
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		conn.Close()
		if c.OnDisconnect != nil {
			c.OnDisconnect(loopErr)
		}
		close(done)
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("[Network] Conexão perdida: %v", err)
			}
			loopErr = err
			return
		}

		var env regionnet.Envelope
		if err := env.Unmarshal(message); err != nil {
			log.Printf("[Network] Erro ao desempacotar envelope: %v", err)
			continue
		}

		c.handleMessage(&env)
	}
}

func (c *NetworkClient) handleMessage(env *regionnet.Envelope) {
	switch env.Type {
	case regionnet.TypeRegionPayload:
		var msg regionnet.RegionPayload
		if err := msg.Unmarshal(env.Payload); err != nil {
			log.Printf("[Network] Payload de região inválido: %v", err)
			return
		}
		if c.OnRegion != nil {
			c.OnRegion(msg.Coord, msg.Data)
		}
	case regionnet.TypeChecksumReply:
		var msg regionnet.ChecksumReply
		if err := msg.Unmarshal(env.Payload); err != nil {
			log.Printf("[Network] Resposta de checksum inválida: %v", err)
			return
		}
		if c.OnChecksum != nil {
			c.OnChecksum(msg.Coord, msg.Match)
		}
	default:
		log.Printf("[Network] Mensagem ignorada: %s", env.Type)
	}
}
