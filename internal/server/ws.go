package server

import (
	"fmt"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"github.com/diogo/dstchat/internal/conversation"
	"github.com/diogo/dstchat/internal/locale"
)

// Event is a frame sent to WebSocket clients
type Event struct {
	Type     string                 `json:"type"`
	Snapshot *conversation.Snapshot `json:"snapshot,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// Command is a frame received from WebSocket clients
type Command struct {
	Action   string `json:"action"`
	Content  string `json:"content,omitempty"`
	Language string `json:"language,omitempty"`
	Category string `json:"category,omitempty"`
}

const (
	EventSnapshot = "snapshot"
	EventError    = "error"

	ActionAsk      = "ask"
	ActionClear    = "clear"
	ActionLanguage = "language"
	ActionToggle   = "toggle"
)

// stream pushes every store snapshot to the client and applies the commands
// it sends back. The reader runs in its own goroutine; only this goroutine
// writes to the connection.
func (s *Server) stream(conn *websocket.Conn) {
	sub, unsubscribe := s.store.Subscribe()
	defer unsubscribe()

	remote := conn.RemoteAddr().String()
	s.logger.Info("client connected", zap.String("remote", remote))

	errs := make(chan string, 8)
	done := make(chan struct{})
	go s.readCommands(conn, errs, done)

	s.writeEvents(conn, sub, errs, done)

	conn.Close()
	<-done
	s.logger.Info("client disconnected", zap.String("remote", remote))
}

func (s *Server) readCommands(conn *websocket.Conn, errs chan<- string, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		if err := s.apply(cmd); err != nil {
			select {
			case errs <- err.Error():
			default:
			}
		}
	}
}

func (s *Server) writeEvents(conn *websocket.Conn, sub <-chan conversation.Snapshot, errs <-chan string, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-sub:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(Event{Type: EventSnapshot, Snapshot: &snap}); err != nil {
				s.logger.Warn("websocket write failed", zap.Error(err))
				return
			}

		case msg := <-errs:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(Event{Type: EventError, Error: msg}); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}

// apply runs one client command against the store. State changes reach the
// client through the subscription, so only errors are returned.
func (s *Server) apply(cmd Command) error {
	switch cmd.Action {
	case ActionAsk:
		_, err := s.store.AddMessage(conversation.UserDraft(cmd.Content))
		return err
	case ActionClear:
		s.store.ClearMessages()
		return nil
	case ActionLanguage:
		return s.store.SetLanguage(locale.Language(cmd.Language))
	case ActionToggle:
		if cmd.Category == "" {
			return fmt.Errorf("toggle requires a category")
		}
		s.store.ToggleCategorySelection(cmd.Category)
		return nil
	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
}
