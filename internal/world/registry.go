package world

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pixil98/go-errors"
)

const roomFileVersion = "v10"

// Registry tracks the live rooms by map id and loads map files on demand.
type Registry struct {
	mapsDir string

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRegistry(mapsDir string) *Registry {
	return &Registry{
		mapsDir: mapsDir,
		rooms:   map[string]*Room{},
	}
}

// Get returns the live room with the given map id, or nil.
func (r *Registry) Get(mapID string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rooms[mapID]
}

// GetOrLoad returns the live room for mapID, loading its map file when no
// instance exists yet. The created flag tells the caller whether the room
// is fresh and still needs populating.
func (r *Registry) GetOrLoad(mapID string) (*Room, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[mapID]; ok {
		return room, false, nil
	}

	room, err := r.load(mapID)
	if err != nil {
		return nil, false, err
	}
	r.rooms[mapID] = room
	return room, true, nil
}

// Rooms returns a snapshot of all live rooms.
func (r *Registry) Rooms() []*Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// mapPath returns the file backing a map id. Rooms are keyed by plain name;
// the files carry a .txt suffix.
func (r *Registry) mapPath(mapID string) string {
	return filepath.Join(r.mapsDir, mapID+".txt")
}

// load reads a map file. Format: version tag, room name, backdrop id, then
// one line per static prop as "layer,tile,x,y,scale,color". Prop ids are
// assigned freshly on each load.
func (r *Registry) load(mapID string) (*Room, error) {
	path := r.mapPath(mapID)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	header := make([]string, 0, 3)
	for len(header) < 3 && scanner.Scan() {
		header = append(header, strings.TrimRight(scanner.Text(), "\r"))
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("map file %s: truncated header", mapID)
	}
	if header[0] != roomFileVersion {
		return nil, fmt.Errorf("map file %s: unsupported version %q", mapID, header[0])
	}

	room := NewRoom(mapID, header[1], header[2])

	el := errors.NewErrorList()
	lineNo := 3
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		el.Add(parseProp(room, line, lineNo))
	}
	el.Add(scanner.Err())

	if err := el.Err(); err != nil {
		return nil, fmt.Errorf("map file %s: %w", mapID, err)
	}
	return room, nil
}

func parseProp(room *Room, line string, lineNo int) error {
	parts := strings.SplitN(line, ",", 6)
	if len(parts) != 6 {
		return fmt.Errorf("line %d: expected 6 fields, got %d", lineNo, len(parts))
	}

	layer, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("line %d: layer: %w", lineNo, err)
	}
	tile, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("line %d: tile: %w", lineNo, err)
	}
	x, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("line %d: x: %w", lineNo, err)
	}
	y, err := strconv.Atoi(parts[3])
	if err != nil {
		return fmt.Errorf("line %d: y: %w", lineNo, err)
	}
	scale, err := strconv.ParseFloat(parts[4], 64)
	if err != nil {
		return fmt.Errorf("line %d: scale: %w", lineNo, err)
	}

	room.MakeMob(layer, tile, 1, 2, x, y, scale, parts[5], TypeProp)
	return nil
}

// Save writes a room back to its map file. Only static props are saved;
// creatures, players and projectiles are transient.
func (r *Registry) Save(room *Room, mapID string) error {
	path := r.mapPath(mapID)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating map file: %w", err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%s\n%s\n%s\n", roomFileVersion, room.Name, room.Backdrop)
	for _, layer := range []int{LayerPatches, LayerMain, LayerClouds} {
		for _, mob := range room.MobsOnLayer(layer) {
			if mob.Type != TypeProp {
				continue
			}
			fmt.Fprintf(w, "%d,%d,%d,%d,%s,%s\n",
				layer, mob.Tile, mob.X, mob.Y,
				strconv.FormatFloat(mob.Scale, 'g', -1, 32), mob.Color)
		}
	}

	el := errors.NewErrorList()
	el.Add(w.Flush())
	el.Add(f.Close())
	if err := el.Err(); err != nil {
		return fmt.Errorf("writing map file %s: %w", mapID, err)
	}
	return nil
}
