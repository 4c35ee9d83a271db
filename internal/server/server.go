// Package server exposes retrieval over a websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xhad/reelindex/internal/models"
	"github.com/xhad/reelindex/internal/types"
)

const (
	TypeQuery    = "query"
	TypeMatches  = "matches"
	TypeStream   = "stream"
	TypeResponse = "response"
	TypeDone     = "done"
	TypeError    = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

type Message struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Data    any    `json:"data,omitempty"`
}

// MatchView is the wire form of a search hit.
type MatchView struct {
	ID       string  `json:"id"`
	File     string  `json:"file"`
	Source   string  `json:"source"`
	Type     string  `json:"type"`
	Document string  `json:"document"`
	Score    float64 `json:"score"`
}

type Config struct {
	Addr        string
	SearchLimit int
	Streaming   bool
}

type WSServer struct {
	config   Config
	store    types.RecordStore
	answerer types.Answerer // nil serves matches only
	logger   *slog.Logger
}

func NewWSServer(store types.RecordStore, answerer types.Answerer, config Config, logger *slog.Logger) *WSServer {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.SearchLimit <= 0 {
		config.SearchLimit = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WSServer{
		config:   config,
		store:    store,
		answerer: answerer,
		logger:   logger,
	}
}

// Handler routes /ws and /health.
func (s *WSServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// ListenAndServe serves until ctx is canceled.
func (s *WSServer) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting websocket server", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// conn serializes writes; gorilla connections allow one concurrent writer.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(msg)
}

func (s *WSServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &conn{ws: ws}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	defer ws.Close()
	defer wg.Wait()
	defer cancel()

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("error reading message", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			s.sendMessage(c, TypeError, fmt.Sprintf("invalid message: %v", err), nil)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleMessage(ctx, c, msg)
		}()
	}
}

func (s *WSServer) handleMessage(ctx context.Context, c *conn, msg Message) {
	if msg.Type != TypeQuery {
		s.sendMessage(c, TypeError, fmt.Sprintf("unsupported message type %q", msg.Type), nil)
		return
	}
	query := strings.TrimSpace(msg.Content)
	if query == "" {
		s.sendMessage(c, TypeError, "empty query", nil)
		return
	}

	matches, err := s.store.Search(ctx, query, s.config.SearchLimit)
	if err != nil {
		s.sendMessage(c, TypeError, fmt.Sprintf("Error querying documents: %v", err), nil)
		return
	}
	s.sendMessage(c, TypeMatches, query, matchViews(matches))

	if s.answerer == nil {
		return
	}

	if s.config.Streaming {
		for chunk := range s.answerer.ChatStream(ctx, query, matches) {
			if strings.HasPrefix(chunk, "Error:") {
				s.sendMessage(c, TypeError, chunk, nil)
				return
			}
			s.sendMessage(c, TypeStream, chunk, nil)
		}
		s.sendMessage(c, TypeDone, "", nil)
		return
	}

	response, err := s.answerer.Chat(ctx, query, matches)
	if err != nil {
		s.sendMessage(c, TypeError, fmt.Sprintf("Error: %v", err), nil)
		return
	}
	s.sendMessage(c, TypeResponse, response, nil)
}

func matchViews(matches []models.Match) []MatchView {
	views := make([]MatchView, len(matches))
	for i, m := range matches {
		views[i] = MatchView{
			ID:       m.ID,
			File:     m.Metadata.File,
			Source:   m.Metadata.Source,
			Type:     m.Metadata.Type,
			Document: m.Document,
			Score:    m.Score,
		}
	}
	return views
}

func (s *WSServer) sendMessage(c *conn, msgType, content string, data any) {
	if err := c.send(Message{Type: msgType, Content: content, Data: data}); err != nil {
		s.logger.Warn("error sending message", "type", msgType, "error", err)
	}
}
