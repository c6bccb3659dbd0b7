package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketListener accepts browser clients. Each websocket message is one
// or more protocol lines; the adapter below presents the socket as a byte
// stream so the connection manager treats it like any other transport.
type WebsocketListener struct {
	port uint16
	cm   *ConnectionManager
}

func NewWebsocketListener(port uint16, cm *ConnectionManager) *WebsocketListener {
	return &WebsocketListener{
		port: port,
		cm:   cm,
	}
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	upgrader := websocket.Upgrader{
		ReadBufferSize:  readBufferSize,
		WriteBufferSize: readBufferSize,
		// The game protocol has its own login; any origin may connect.
		CheckOrigin: func(*http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.ErrorContext(r.Context(), "upgrading websocket", "error", err)
			return
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			l.cm.AcceptConnection(connCtx, &wsReadWriter{conn: conn})
		}()
	})

	svr := &http.Server{
		Addr:    fmt.Sprintf(":%d", l.port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		svr.Shutdown(shutdownCtx)
		cancelConns()
	}()

	slog.InfoContext(ctx, "listening for websocket", "port", l.port)

	err := svr.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket on port %d: %w", l.port, err)
	}

	wg.Wait()
	return nil
}

// wsReadWriter adapts a websocket connection to the io.ReadWriter the
// connection manager expects. Reads drain one message at a time; writes
// send one text message per call, which is fine because the caster always
// writes whole lines.
type wsReadWriter struct {
	conn    *websocket.Conn
	pending []byte
}

func (w *wsReadWriter) Read(p []byte) (int, error) {
	for len(w.pending) == 0 {
		_, payload, err := w.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		w.pending = payload
	}
	n := copy(p, w.pending)
	w.pending = w.pending[n:]
	return n, nil
}

func (w *wsReadWriter) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsReadWriter) Close() error {
	return w.conn.Close()
}
