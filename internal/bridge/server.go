// Package bridge связывает движок с внешними рендерерами по websocket:
// наружу уходят снимки кадра, внутрь приходят события ввода.
package bridge

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/annel0/voxel4d/internal/diagnostics"
	"github.com/annel0/voxel4d/internal/engine"
	"github.com/annel0/voxel4d/internal/logging"
)

const (
	writeWait      = 2 * time.Second
	maxMessageSize = 4096
	// sendQueueSize кадров в очереди клиента; переполнение значит,
	// что рендерер не успевает читать, и его отключают
	sendQueueSize = 256
)

var errSendQueueFull = errors.New("очередь отправки переполнена")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // рендерер может жить на другом origin
	},
}

type message struct {
	kind int
	data []byte
}

// client соединение рендерера. Писать в conn может только writePump;
// остальные кладут кадры в send и никогда не ждут.
type client struct {
	id        uuid.UUID
	conn      *websocket.Conn
	send      chan message
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan message, sendQueueSize),
		done: make(chan struct{}),
	}
}

// enqueue ставит кадр в очередь; false, если очередь переполнена
func (c *client) enqueue(m message) bool {
	select {
	case c.send <- m:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// Server websocket мост. Последние значения каждого вида кадра
// кэшируются, чтобы новый клиент сразу получил полное состояние.
type Server struct {
	input   *engine.InputQueue
	metrics *diagnostics.FrameMetrics
	codec   *codec
	log     *logging.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	latest  map[string]message // по типу/тегу кадра
	order   []string
}

// NewServer создаёт мост; metrics может быть nil
func NewServer(input *engine.InputQueue, metrics *diagnostics.FrameMetrics) (*Server, error) {
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	return &Server{
		input:   input,
		metrics: metrics,
		codec:   c,
		clients: make(map[*client]struct{}),
		latest:  make(map[string]message),
	}, nil
}

// SetLogger задаёт логгер компонента; без него пишет глобальный
func (s *Server) SetLogger(l *logging.Logger) {
	s.log = l
}

func (s *Server) logger() *logging.Logger {
	if s.log != nil {
		return s.log
	}
	return logging.Default()
}

// Handler HTTP-маршруты моста
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "clients": s.ClientCount()})
	})
	return mux
}

// ClientCount число подключённых рендереров
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close закрывает все соединения
func (s *Server) Close() {
	s.mu.Lock()
	for c := range s.clients {
		c.close()
		delete(s.clients, c)
	}
	s.mu.Unlock()
	s.codec.close()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger().Warn("WebSocket upgrade error: %v", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := newClient(conn)
	go s.writePump(c)
	if err := s.register(c); err != nil {
		s.logger().Warn("🔌 Рендерер %s: не удалось отправить состояние: %v", c.id, err)
		s.unregister(c)
		return
	}
	s.logger().Info("🔌 Рендерер %s подключён (%s)", c.id, r.RemoteAddr)
	defer s.unregister(c)

	s.readLoop(c)
}

// register ставит клиенту кэш в очередь под общим замком,
// чтобы между кэшем и первым Broadcast не потерялся кадр
func (s *Server) register(c *client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.order {
		if !c.enqueue(s.latest[key]) {
			return errSendQueueFull
		}
	}
	s.clients[c] = struct{}{}
	s.reportClients()
	return nil
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		s.logger().Info("🔌 Рендерер %s отключён", c.id)
	}
	s.reportClients()
	s.mu.Unlock()
	c.close()
}

func (s *Server) reportClients() {
	if s.metrics != nil {
		s.metrics.BridgeClients(len(s.clients))
	}
}

// writePump единственный писатель в соединение клиента
func (s *Server) writePump(c *client) {
	for {
		select {
		case <-c.done:
			return
		case m := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(m.kind, m.data); err != nil {
				s.logger().Warn("🔌 Рендерер %s: ошибка записи, отключаем: %v", c.id, err)
				s.unregister(c)
				return
			}
			if s.metrics != nil {
				s.metrics.BytesSent(len(m.data))
			}
		}
	}
}

func (s *Server) readLoop(c *client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger().Warn("WebSocket read error от %s: %v", c.id, err)
			}
			return
		}

		var ev engine.Event
		if err := json.Unmarshal(data, &ev); err == nil {
			err = s.input.Push(ev)
		}
		if err != nil {
			s.logger().FrameError(c.id.String(), err, data)
			reply, _ := json.Marshal(TextFrame{Type: TypeError, Error: err.Error()})
			c.enqueue(message{websocket.TextMessage, reply})
		}
	}
}

// Broadcast ставит изменившиеся части снимка в очереди клиентов.
// Запись в сокеты идёт в writePump, поэтому медленный рендерер
// не тормозит кадр: при переполнении очереди его отключают.
func (s *Server) Broadcast(snap engine.Snapshot) error {
	msgs, err := s.encode(snap)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range msgs {
		if _, ok := s.latest[m.key]; !ok {
			s.order = append(s.order, m.key)
		}
		s.latest[m.key] = m.message
	}

	for c := range s.clients {
		for _, m := range msgs {
			if !c.enqueue(m.message) {
				s.logger().Warn("🔌 Рендерер %s не успевает читать, отключаем", c.id)
				delete(s.clients, c)
				c.close()
				break
			}
		}
	}
	s.reportClients()
	return nil
}

type keyedMessage struct {
	key string
	message
}

func (s *Server) encode(snap engine.Snapshot) ([]keyedMessage, error) {
	var out []keyedMessage
	addText := func(typ string, changed bool, v any) error {
		if !changed {
			return nil
		}
		data, err := textFrame(typ, snap.Frame, v)
		if err != nil {
			return err
		}
		out = append(out, keyedMessage{typ, message{websocket.TextMessage, data}})
		return nil
	}
	addBinary := func(key string, tag byte, changed bool, raw func() []byte) {
		if !changed {
			return
		}
		out = append(out, keyedMessage{key, message{websocket.BinaryMessage, s.codec.encode(tag, raw())}})
	}

	if err := addText(TypeMeta, snap.Meta.Changed, snap.Meta.Value); err != nil {
		return nil, err
	}
	addBinary("palette", TagPalette, snap.Palette.Changed, func() []byte { return PaletteBytes(snap.Palette.Value) })
	addBinary("voxels", TagVoxels, snap.Voxels.Changed, func() []byte { return snap.Voxels.Value })
	addBinary("view", TagView, snap.View.Changed, func() []byte { return snap.View.Value })
	if err := addText(TypeCamera4D, snap.Camera4D.Changed, snap.Camera4D.Value); err != nil {
		return nil, err
	}
	if err := addText(TypeCamera3D, snap.Camera3D.Changed, snap.Camera3D.Value); err != nil {
		return nil, err
	}
	return out, nil
}
