package live

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chazu/sceneweave/pkg/editor"
	"github.com/chazu/sceneweave/pkg/engine"
)

//go:embed static/index.html
var indexHTML []byte

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Server handles websocket connections, one editor per session.
type Server struct {
	upgrader  websocket.Upgrader
	newEditor func(editor.Confirmer) *editor.Editor
	engine    *engine.Engine
	log       *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	nextID   atomic.Uint64
}

// NewServer creates a live server. newEditor builds a fresh editor for each
// session around the given deletion Confirmer.
func NewServer(newEditor func(editor.Confirmer) *editor.Editor, eng *engine.Engine, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Same-origin only unless the browser omits Origin.
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
			},
		},
		newEditor: newEditor,
		engine:    eng,
		log:       log,
		sessions:  make(map[string]*Session),
	}
}

// Handler returns the HTTP routes: the browser client at / and the
// websocket endpoint at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexHTML)
	})
	return mux
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close disconnects every session.
func (s *Server) Close() {
	s.mu.RLock()
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.RUnlock()
	for _, sess := range open {
		sess.close()
	}
}

// HandleWebSocket upgrades the request and runs a session until the
// client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	id := fmt.Sprintf("s%d", s.nextID.Add(1))
	sess := &Session{
		ID:   id,
		conn: conn,
		disp: newDispatcher(s.newEditor, s.engine),
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  s.log.With("session", id),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
	}()

	sess.run()
}

// Session is one websocket client and the editor it drives.
type Session struct {
	ID   string
	conn *websocket.Conn
	disp *dispatcher
	send chan []byte
	done chan struct{}
	once sync.Once
	log  *slog.Logger
}

func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// run starts the writer, greets the client with a snapshot and reads
// commands until the connection drops.
func (s *Session) run() {
	defer s.close()
	go s.writer()

	s.log.Debug("session opened")
	snap := s.disp.ed.Snapshot()
	s.queue(Message{Type: MsgSnapshot, OK: true, Snapshot: &snap})

	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("unexpected close", "err", err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.queue(Message{Type: MsgReply, Error: fmt.Sprintf("live: bad command: %v", err)})
			continue
		}
		for _, m := range s.disp.Handle(cmd) {
			s.queue(m)
		}
	}
	s.log.Debug("session closed")
}

func (s *Session) queue(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		s.log.Error("encode message", "err", err)
		return
	}
	select {
	case s.send <- data:
	case <-s.done:
	}
}

// writer owns all writes to the connection.
func (s *Session) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Warn("write failed", "err", err)
				s.close()
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		case <-s.done:
			return
		}
	}
}
