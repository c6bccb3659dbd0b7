// Package dispatch is the single-threaded command processor. All game
// commands from all connections funnel through one goroutine, so handlers
// mutate rooms and sessions without interleaving with each other.
package dispatch

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"

	"github.com/tinyplaces/server/internal/catalog"
	"github.com/tinyplaces/server/internal/item"
	"github.com/tinyplaces/server/internal/proto"
	"github.com/tinyplaces/server/internal/session"
	"github.com/tinyplaces/server/internal/world"
)

// DefaultStartRoom is the map players enter when the game starts.
const DefaultStartRoom = "lobby"

const defaultEventQueueSize = 1024

// Event is one unit of inbound connection traffic: either a chunk of raw
// bytes or a close notification.
type Event struct {
	ConnID string
	Data   []byte
	Closed bool
}

type handlerFunc func(s *session.Session, cmd proto.Command) error

// Deps collects everything the command handlers touch.
type Deps struct {
	Caster    Caster
	Sessions  *session.Table
	Accounts  *session.AccountStore
	Catalogs  *catalog.Set
	Rooms     *world.Registry
	Items     *item.Builder
	StartRoom string
	QueueSize int
}

// Dispatcher drains the inbound event queue on its own goroutine. A
// handler that fails logs and moves on; nothing a client sends can stop
// the loop.
type Dispatcher struct {
	events chan Event

	caster    Caster
	sessions  *session.Table
	accounts  *session.AccountStore
	catalogs  *catalog.Set
	rooms     *world.Registry
	items     *item.Builder
	startRoom string

	rng      *rand.Rand
	partial  map[string][]byte
	handlers map[string]handlerFunc

	// noSession lists the verbs valid before login.
	noSession map[string]bool
}

func NewDispatcher(deps Deps) *Dispatcher {
	if deps.StartRoom == "" {
		deps.StartRoom = DefaultStartRoom
	}
	if deps.QueueSize <= 0 {
		deps.QueueSize = defaultEventQueueSize
	}

	d := &Dispatcher{
		events:    make(chan Event, deps.QueueSize),
		caster:    deps.Caster,
		sessions:  deps.Sessions,
		accounts:  deps.Accounts,
		catalogs:  deps.Catalogs,
		rooms:     deps.Rooms,
		items:     deps.Items,
		startRoom: deps.StartRoom,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		partial:   map[string][]byte{},
	}

	d.handlers = map[string]handlerFunc{
		"HELO": d.handleLogin,
		"REGI": d.handleRegister,
		"GBYE": d.handleLogout,
		"GAME": d.handleStartGame,
		"ADDM": d.handleAddMob,
		"UPDM": d.handleUpdateMob,
		"DELM": d.handleDeleteMob,
		"LOAD": d.handleLoadMap,
		"SAVE": d.handleSaveMap,
		"MOVE": d.handleMove,
		"FIRE": d.handleFire,
		"CHAT": d.handleChat,
		"UPDI": d.handleUpdateItem,
	}
	d.noSession = map[string]bool{"HELO": true, "REGI": true, "GBYE": true}

	return d
}

// HandleData enqueues a chunk of inbound bytes. Called from listener read
// pumps; blocks only when the dispatcher is saturated, which applies
// natural backpressure to the socket.
func (d *Dispatcher) HandleData(connID string, data []byte) {
	d.events <- Event{ConnID: connID, Data: data}
}

// HandleClosed enqueues a disconnect notification.
func (d *Dispatcher) HandleClosed(connID string) {
	d.events <- Event{ConnID: connID, Closed: true}
}

// Start runs the dispatch loop until the context is canceled.
func (d *Dispatcher) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "command dispatcher running")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-d.events:
			d.process(ctx, ev)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic processing event",
				"conn", ev.ConnID, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if ev.Closed {
		delete(d.partial, ev.ConnID)
		d.dropConnection(ev.ConnID)
		return
	}

	// Reads are forwarded as raw chunks; a command may arrive split
	// across several of them. Carry the trailing partial line until its
	// newline shows up.
	data := append(d.partial[ev.ConnID], ev.Data...)
	cut := bytes.LastIndexByte(data, '\n')
	if cut < 0 {
		d.partial[ev.ConnID] = data
		return
	}
	d.partial[ev.ConnID] = append([]byte(nil), data[cut+1:]...)

	for _, line := range proto.SplitLines(data[:cut+1]) {
		d.dispatchLine(ev.ConnID, line)
	}
}

func (d *Dispatcher) dispatchLine(connID, line string) {
	cmd, err := proto.ParseCommand(line)
	if err != nil {
		slog.Warn("malformed command", "conn", connID, "error", err)
		return
	}

	handler, ok := d.handlers[cmd.Verb]
	if !ok {
		slog.Warn("unknown command", "conn", connID, "verb", cmd.Verb)
		return
	}

	s := d.sessions.Get(connID)
	if s == nil && !d.noSession[cmd.Verb] {
		slog.Warn("command before login", "conn", connID, "verb", cmd.Verb)
		return
	}
	if s == nil {
		// Pre-login handlers work off the connection id alone.
		s = &session.Session{ConnID: connID}
	}

	if err := handler(s, cmd); err != nil {
		slog.Warn("handling command", "conn", connID, "verb", cmd.Verb, "error", err)
	}
}

// dropConnection cleans up after a vanished client: the avatar leaves its
// room and the rest of the room is told.
func (d *Dispatcher) dropConnection(connID string) {
	s := d.sessions.Remove(connID)
	if s == nil {
		return
	}

	if s.Avatar != nil && s.Room != nil {
		if s.Room.RemoveMob(world.LayerMain, s.Avatar.ID) == nil {
			slog.Warn("avatar was not in its room", "conn", connID, "mob", s.Avatar.ID)
		}
		s.Room.CancelMoves(s.Avatar.ID)
		d.caster.Roomcast(s.Room, proto.DeleteMob(s.Avatar.ID, world.LayerMain))
	}

	slog.Info("session ended", "conn", connID, "name", s.Name, "remaining", d.sessions.Len())
}
