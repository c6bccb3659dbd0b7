package listener

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tinyplaces/server/internal/messaging"
)

const readBufferSize = 8192

// DefaultQueueSize bounds each connection's outbound queue. A client that
// cannot drain this many pending messages is disconnected rather than
// allowed to stall the server.
const DefaultQueueSize = 256

// Bus is the subscription side of the message bus. Outbound wire data for
// a connection arrives on its own subject.
type Bus interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// Dispatcher consumes inbound connection traffic. Both calls enqueue and
// return quickly; neither blocks on game logic.
type Dispatcher interface {
	HandleData(connID string, data []byte)
	HandleClosed(connID string)
}

// ConnectionManager runs the per-connection pumps shared by all listener
// protocols. Each accepted connection gets a fresh id, a subscription for
// its outbound traffic, and a bounded write queue.
type ConnectionManager struct {
	bus        Bus
	dispatcher Dispatcher
	queueSize  int
}

func NewConnectionManager(bus Bus, dispatcher Dispatcher, queueSize int) *ConnectionManager {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &ConnectionManager{
		bus:        bus,
		dispatcher: dispatcher,
		queueSize:  queueSize,
	}
}

// AcceptConnection services one client connection until it closes or falls
// too far behind. It blocks for the lifetime of the connection; listeners
// call it from the goroutine they dedicate to the connection.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	connID := uuid.NewString()
	slog.InfoContext(ctx, "connection accepted", "conn", connID)

	out := make(chan []byte, m.queueSize)
	dead := make(chan struct{})
	kill := func() {
		select {
		case <-dead:
		default:
			close(dead)
		}
	}

	unsubscribe, err := m.bus.Subscribe(messaging.ConnSubject(connID), func(data []byte) {
		// The bus owns the callback buffer, so queue a copy.
		buf := make([]byte, len(data))
		copy(buf, data)
		select {
		case out <- buf:
		default:
			// Slow client. Drop the connection instead of blocking the
			// game or buffering without bound.
			slog.WarnContext(ctx, "outbound queue full, disconnecting", "conn", connID)
			kill()
		}
	})
	if err != nil {
		slog.ErrorContext(ctx, "subscribing connection", "conn", connID, "error", err)
		return
	}
	defer unsubscribe()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case data := <-out:
				if _, err := conn.Write(data); err != nil {
					slog.WarnContext(ctx, "writing to connection", "conn", connID, "error", err)
					return
				}
			case <-dead:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	// Unblock the read loop when the connection is torn down from our
	// side. Only closing the transport interrupts a blocked Read.
	go func() {
		select {
		case <-dead:
		case <-ctx.Done():
		case <-writerDone:
		}
		if c, ok := conn.(io.Closer); ok {
			c.Close()
		}
	}()

	m.readLoop(ctx, connID, conn)

	kill()
	<-writerDone

	m.dispatcher.HandleClosed(connID)
	slog.InfoContext(ctx, "connection closed", "conn", connID)
}

// readLoop forwards exactly the bytes received, leaving line framing to
// the dispatcher. Returns on end-of-stream or any read error.
func (m *ConnectionManager) readLoop(ctx context.Context, connID string, conn io.Reader) {
	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			m.dispatcher.HandleData(connID, data)
		}
		if err != nil {
			if err != io.EOF {
				slog.DebugContext(ctx, "reading from connection", "conn", connID, "error", err)
			}
			return
		}
	}
}
