package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pixil98/go-testutil"
	"github.com/stretchr/testify/require"

	"github.com/tinyplaces/server/internal/catalog"
	"github.com/tinyplaces/server/internal/item"
	"github.com/tinyplaces/server/internal/proto"
	"github.com/tinyplaces/server/internal/session"
	"github.com/tinyplaces/server/internal/world"
)

type sentLine struct {
	kind   string // "single", "room", "roomExcept", "broadcast"
	target string // connection id for "single", excluded id for "roomExcept"
	room   *world.Room
	line   string
}

// recordingCaster captures outbound lines instead of publishing them.
type recordingCaster struct {
	sent []sentLine
}

func (c *recordingCaster) Singlecast(connID string, data []byte) {
	c.sent = append(c.sent, sentLine{kind: "single", target: connID, line: string(data)})
}

func (c *recordingCaster) Roomcast(room *world.Room, data []byte) {
	c.sent = append(c.sent, sentLine{kind: "room", room: room, line: string(data)})
}

func (c *recordingCaster) RoomcastExcept(room *world.Room, exclude string, data []byte) {
	c.sent = append(c.sent, sentLine{kind: "roomExcept", target: exclude, room: room, line: string(data)})
}

func (c *recordingCaster) Broadcast(data []byte) {
	c.sent = append(c.sent, sentLine{kind: "broadcast", line: string(data)})
}

// linesTo returns every line singlecast to one connection.
func (c *recordingCaster) linesTo(connID string) []string {
	var lines []string
	for _, s := range c.sent {
		if s.kind == "single" && s.target == connID {
			lines = append(lines, s.line)
		}
	}
	return lines
}

// roomLines returns every line roomcast to any room.
func (c *recordingCaster) roomLines() []string {
	var lines []string
	for _, s := range c.sent {
		if s.kind == "room" {
			lines = append(lines, s.line)
		}
	}
	return lines
}

func (c *recordingCaster) reset() {
	c.sent = nil
}

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testCatalogs(t *testing.T) *catalog.Set {
	t.Helper()
	dir := t.TempDir()

	paths := catalog.Paths{
		Spells:          filepath.Join(dir, "spells.csv"),
		Creatures:       filepath.Join(dir, "creatures.csv"),
		Items:           filepath.Join(dir, "items.csv"),
		Transitions:     filepath.Join(dir, "transitions.csv"),
		Populations:     filepath.Join(dir, "populations.csv"),
		TreasureClasses: filepath.Join(dir, "treasure_classes.csv"),
	}

	writeFixture(t, paths.Spells,
		"id,name,ptype,phys min,phys max,fire min,fire max,cold min,cold max,light min,light max,chaos min,chaos max,speed,cast time\n"+
			"firebolt,Firebolt,fireball,0,0,10,10,0,0,0,0,0,0,500,0\n"+
			"frostbolt,Frostbolt,iceball,0,0,0,0,8,8,0,0,0,0,400,300\n")

	writeFixture(t, paths.Creatures,
		"id,name,tile,min life,max life,phys,fire,cold,light,chaos,pattern,speed,spell,treasure class,color,scale\n"+
			"imp,Imp,9,10,10,0,0,0,0,0,bounce,80,firebolt,imp_drops,1 1 1 1,1\n"+
			"shadow,Shadow,17,4,4,0,0,0,0,0,glide,60,,imp_drops,0.5 0.5 0.5 1,1\n")

	writeFixture(t, paths.Items,
		"id,name,class,type,tile,shadow,shadow scale,width,height,color,scale,can drop,stack size,base value,e min,e max,p min,p max,description\n"+
			"small_blaster,Small Blaster,weapon,blaster,2,0,1,2,2,1 1 1 1,1,1,1,10,1,1,3,3,A worn sidearm.\n"+
			"blaster,Blaster,weapon,blaster,2,0,1,2,2,1 1 1 1,1,1,1,20,2,2,5,5,A standard blaster.\n"+
			"firebolt_core,Firebolt Core,core,firebolt,3,0,1,1,1,1 1 1 1,1,1,1,5,0,0,0,0,A glowing core.\n"+
			"frostbolt_core,Frostbolt Core,core,frostbolt,3,0,1,1,1,1 1 1 1,1,1,1,5,0,0,0,0,A cold core.\n"+
			"mana_globe,Mana Globe,powerup,mana,4,0,1,1,1,0 0 1 1,1,1,1,10,0,0,0,0,Restores mana.\n")

	writeFixture(t, paths.Transitions,
		"id,name,from map,from x,from y,to map,to x,to y\n"+
			"gate,Gate,lobby,600,100,cave,300,200\n")

	writeFixture(t, paths.Populations,
		"map,creature,min,max,x,y,spacing\n"+
			"cave,imp,2,2,400,300,20\n")

	writeFixture(t, paths.TreasureClasses,
		"class,item,chance\n"+
			"imp_drops,mana_globe,1\n")

	set, err := catalog.Load(paths)
	require.NoError(t, err)
	return set
}

func testMapsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "lobby.txt"),
		"v10\nLobby\nmap_soft\n3,5,100,200,1,1 1 1 1\n")
	writeFixture(t, filepath.Join(dir, "cave.txt"),
		"v10\nCave\nmap_dark\n1,7,50,60,1,1 1 1 1\n")
	return dir
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *recordingCaster) {
	t.Helper()
	caster := &recordingCaster{}
	d := NewDispatcher(Deps{
		Caster:   caster,
		Sessions: session.NewTable(),
		Accounts: session.NewAccountStore(t.TempDir()),
		Catalogs: testCatalogs(t),
		Rooms:    world.NewRegistry(testMapsDir(t)),
		Items:    item.NewBuilder(),
	})
	return d, caster
}

// login registers an account for the connection and logs it in.
func login(t *testing.T, d *Dispatcher, connID, name string) *session.Session {
	t.Helper()
	d.dispatchLine(connID, "REGI,"+name+",secret")
	d.dispatchLine(connID, "HELO,"+name+",secret")
	s := d.sessions.Get(connID)
	require.NotNil(t, s, "session after login")
	return s
}

// startGame logs in and spawns the avatar.
func startGame(t *testing.T, d *Dispatcher, connID, name string) *session.Session {
	t.Helper()
	s := login(t, d, connID, name)
	d.dispatchLine(connID, "GAME")
	require.NotNil(t, s.Avatar, "avatar after GAME")
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	d, caster := newTestDispatcher(t)

	d.dispatchLine("c1", "REGI,Alice,secret")
	require.Equal(t, []string{"CHAT,System,successful\n"}, caster.linesTo("c1"))

	caster.reset()
	d.dispatchLine("c1", "REGI,alice,other")
	require.Equal(t, []string{"CHAT,System,Account name is taken already.\n"}, caster.linesTo("c1"))

	caster.reset()
	d.dispatchLine("c1", "HELO,Alice,wrong")
	require.Equal(t, []string{"CHAT,System,Login failed. Please try again.\n"}, caster.linesTo("c1"))
	testutil.AssertEqual(t, "sessions after failed login", d.sessions.Len(), 0)

	caster.reset()
	d.dispatchLine("c1", "HELO,Alice,secret")
	require.Equal(t, []string{
		"CHAT,System,successful\n",
		"STAT,0,0,40,40,1,0,40,40\n",
	}, caster.linesTo("c1"))
	testutil.AssertEqual(t, "sessions after login", d.sessions.Len(), 1)
}

func TestCommandsBeforeLogin(t *testing.T) {
	d, caster := newTestDispatcher(t)

	for _, line := range []string{"GAME", "MOVE,1,3,100,100", "CHAT,hello"} {
		d.dispatchLine("c1", line)
	}

	testutil.AssertEqual(t, "messages sent", len(caster.sent), 0)
	testutil.AssertEqual(t, "sessions", d.sessions.Len(), 0)
}

func TestStartGame(t *testing.T) {
	d, caster := newTestDispatcher(t)

	alice := startGame(t, d, "c1", "Alice")

	testutil.AssertEqual(t, "start room", alice.Room.MapID, "lobby")

	wantAddp := proto.AddPlayer(alice.Avatar.ID, "Alice", world.LayerMain,
		39, 16, 1, 600, 400, 0.5, "1.0 1.0 1.0 1.0")
	var gotAddp []string
	var gotAddi int
	for _, line := range caster.linesTo("c1") {
		if strings.HasPrefix(line, "ADDP,") {
			gotAddp = append(gotAddp, line)
		}
		if strings.HasPrefix(line, "ADDI,") {
			gotAddi++
		}
	}
	require.Equal(t, []string{string(wantAddp)}, gotAddp, "addp lines")
	testutil.AssertEqual(t, "starting equipment lines", gotAddi, 4)

	// weapon slot plus three inventory items
	var inInventory, inSlots int
	for _, it := range alice.Inventory.Items() {
		switch {
		case it.Where == item.InInventory:
			inInventory++
		case it.Where >= item.SlotFirst:
			inSlots++
		}
	}
	testutil.AssertEqual(t, "inventory items", inInventory, 3)
	testutil.AssertEqual(t, "equipped items", inSlots, 1)

	// A second player gets its own ADDP; the first player's client learns
	// about it through the roomcast ADDM.
	caster.reset()
	bob := startGame(t, d, "c2", "Bob")

	var addmToRoom []string
	for _, m := range caster.sent {
		if m.kind == "roomExcept" && strings.HasPrefix(m.line, "ADDM,") {
			testutil.AssertEqual(t, "addm excludes sender", m.target, "c2")
			testutil.AssertEqual(t, "addm room", m.room, alice.Room, cmpopts.IgnoreUnexported(world.Room{}))
			addmToRoom = append(addmToRoom, m.line)
		}
	}
	wantAddm := proto.AddMob(bob.Avatar.ID, "Bob", world.LayerMain,
		39, 16, 1, 600, 400, 0.5, "1.0 1.0 1.0 1.0", int(world.TypePlayer))
	require.Equal(t, []string{string(wantAddm)}, addmToRoom, "addm lines")
	testutil.AssertEqual(t, "shared room", bob.Room, alice.Room, cmpopts.IgnoreUnexported(world.Room{}))
}

func TestMoveCommand(t *testing.T) {
	d, caster := newTestDispatcher(t)
	s := startGame(t, d, "c1", "Alice")
	caster.reset()

	id := strconv.Itoa(s.Avatar.ID)
	d.dispatchLine("c1", "MOVE,"+id+",3,100,120")

	// The avatar spectre tile glides.
	require.Equal(t, []string{"MOVE," + id + ",3,100,120,120,glide\n"}, caster.roomLines())

	s.Room.MergeStagedActions()
	testutil.AssertEqual(t, "actions after move", len(s.Room.Actions()), 1)

	// A second move cancels the first; moves never queue.
	d.dispatchLine("c1", "MOVE,"+id+",3,300,320")
	s.Room.MergeStagedActions()
	testutil.AssertEqual(t, "actions after second move", len(s.Room.Actions()), 1)
}

func TestMoveUnknownMob(t *testing.T) {
	d, caster := newTestDispatcher(t)
	startGame(t, d, "c1", "Alice")
	caster.reset()

	d.dispatchLine("c1", "MOVE,9999,3,100,120")
	testutil.AssertEqual(t, "messages sent", len(caster.sent), 0)
}

func TestChat(t *testing.T) {
	d, caster := newTestDispatcher(t)
	startGame(t, d, "c1", "Alice")
	caster.reset()

	d.dispatchLine("c1", "CHAT,hello, world")
	require.Equal(t, []string{"CHAT,Alice,hello, world\n"}, caster.roomLines())
}

func TestColorChatCommand(t *testing.T) {
	d, caster := newTestDispatcher(t)
	s := startGame(t, d, "c1", "Alice")

	tests := map[string]struct {
		line      string
		wantColor string
		wantError string
	}{
		"too few components": {
			line:      "CHAT,/color 1 0",
			wantError: "CHAT,System,1 0.5 0 1,Colors need three components at least, but only 2 were given.\n",
		},
		"alpha defaulted": {
			line:      "CHAT,/color 0.2 0.4 0.6",
			wantColor: "0.2 0.4 0.6 1",
		},
		"full color": {
			line:      "CHAT,/color 1 0 0 0.5",
			wantColor: "1 0 0 0.5",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			caster.reset()
			d.dispatchLine("c1", tc.line)

			if tc.wantError != "" {
				require.Equal(t, []string{tc.wantError}, caster.linesTo("c1"), "error chat")
				testutil.AssertEqual(t, "roomcasts", len(caster.roomLines()), 0)
				return
			}

			testutil.AssertEqual(t, "avatar color", s.Avatar.Color, tc.wantColor)
			want := proto.UpdateMob(s.Avatar.ID, world.LayerMain,
				s.Avatar.Tile, s.Avatar.X, s.Avatar.Y, s.Avatar.Scale, tc.wantColor)
			require.Equal(t, []string{string(want)}, caster.roomLines(), "update roomcast")
		})
	}
}

func TestLoadMap(t *testing.T) {
	d, caster := newTestDispatcher(t)
	login(t, d, "c1", "Alice")
	caster.reset()

	d.dispatchLine("c1", "LOAD,cave")

	s := d.sessions.Get("c1")
	testutil.AssertEqual(t, "current room", s.Room.MapID, "cave")

	lines := caster.linesTo("c1")
	require.NotEmpty(t, lines)
	testutil.AssertEqual(t, "load line", lines[0], "LOAD,Cave,map_dark,cave\n")

	// Loading a map serves its props but does not spawn creatures; that
	// belongs to the game flow, not the editor.
	testutil.AssertEqual(t, "served objects", len(lines)-1, 1)
	testutil.AssertEqual(t, "served prop", strings.HasPrefix(lines[1], "ADDM,1,n,1,7,"), true)
	testutil.AssertEqual(t, "creatures spawned", len(s.Room.MobsOnLayer(world.LayerMain)), 0)
}

func TestEditMapRoundTrip(t *testing.T) {
	d, caster := newTestDispatcher(t)
	login(t, d, "c1", "Alice")
	d.dispatchLine("c1", "LOAD,cave")
	caster.reset()

	d.dispatchLine("c1", "ADDM,3,12,250,260,1.5,1 1 1 1")

	room := d.sessions.Get("c1").Room
	mobs := room.MobsOnLayer(world.LayerMain)
	require.Len(t, mobs, 1)
	testutil.AssertEqual(t, "prop tile", mobs[0].Tile, 12)
	require.Equal(t, []string{
		string(proto.AddMob(mobs[0].ID, "n", 3, 12, 1, 2, 250, 260, 1.5, "1 1 1 1", int(world.TypeProp))),
	}, caster.roomLines(), "announce")

	caster.reset()
	id := strconv.Itoa(mobs[0].ID)
	d.dispatchLine("c1", "UPDM,"+id+",3,13,255,265,2,0 1 0 1")
	testutil.AssertEqual(t, "updated tile", mobs[0].Tile, 13)
	require.Equal(t, []string{"UPDM," + id + ",3,13,255,265,2,0 1 0 1\n"}, caster.roomLines(), "update echo")

	// Saving under a new name and loading it back proves the file round
	// trips through the map format.
	d.dispatchLine("c1", "SAVE,cave2")
	d.dispatchLine("c1", "LOAD,cave2")
	copied := d.sessions.Get("c1").Room
	testutil.AssertEqual(t, "saved copy name", copied.Name, "Cave")
	testutil.AssertEqual(t, "saved props", len(copied.MobsOnLayer(world.LayerMain)), 1)

	d.dispatchLine("c1", "LOAD,cave")
	caster.reset()
	d.dispatchLine("c1", "DELM,"+id+",3")
	testutil.AssertEqual(t, "prop removed", len(room.MobsOnLayer(world.LayerMain)), 0)
	require.Equal(t, []string{"DELM," + id + ",3\n"}, caster.roomLines(), "delete echo")
}

func TestFireCommand(t *testing.T) {
	d, caster := newTestDispatcher(t)
	s := startGame(t, d, "c1", "Alice")
	caster.reset()

	d.dispatchLine("c1", "FIRE,3,firebolt,700,450")

	var projectile *world.Mob
	for _, m := range s.Room.MobsOnLayer(world.LayerMain) {
		if m.Type == world.TypeProjectile {
			projectile = m
		}
	}
	require.NotNil(t, projectile, "projectile mob")
	testutil.AssertEqual(t, "projectile x", projectile.X, s.Avatar.X)
	testutil.AssertEqual(t, "projectile y", projectile.Y, s.Avatar.Y)

	want := proto.Fire(s.Avatar.ID, projectile.ID, 3, "fireball", 0, 700, 450, 500)
	require.Equal(t, []string{string(want)}, caster.roomLines(), "fire roomcast")

	s.Room.MergeStagedActions()
	testutil.AssertEqual(t, "cast scheduled", len(s.Room.Actions()), 1)
}

func TestUpdateItemPlacement(t *testing.T) {
	d, _ := newTestDispatcher(t)
	s := startGame(t, d, "c1", "Alice")

	var core *item.Item
	for _, it := range s.Inventory.Items() {
		if it.Base.ID == "firebolt_core" {
			core = it
		}
	}
	require.NotNil(t, core, "starting core")

	d.dispatchLine("c1", "UPDI,"+strconv.Itoa(core.ID)+",1,0,3")
	testutil.AssertEqual(t, "moved x", core.X, 0)
	testutil.AssertEqual(t, "moved y", core.Y, 3)

	// Placing onto the blaster's footprint is refused.
	d.dispatchLine("c1", "UPDI,"+strconv.Itoa(core.ID)+",1,1,1")
	testutil.AssertEqual(t, "blocked x", core.X, 0)
	testutil.AssertEqual(t, "blocked y", core.Y, 3)
}

func TestApplyPowerup(t *testing.T) {
	d, caster := newTestDispatcher(t)
	s := startGame(t, d, "c1", "Alice")
	room := s.Room

	base, ok := d.catalogs.BaseItem("mana_globe")
	require.True(t, ok)
	globe := d.items.Create(base, d.rng)
	globe.Where = item.OnMap
	mob := room.MakeMob(world.LayerMain, base.Tile, 1, 1, 500, 400, 1, base.Color, world.TypeProp)
	mob.ItemID = globe.ID
	globe.MobID = mob.ID
	room.AddItem(globe)

	s.Stats[session.StatMana].Value = 5
	caster.reset()

	d.ApplyPowerup(s, room, globe)

	testutil.AssertEqual(t, "mana restored", s.Stats[session.StatMana].Value, 15)
	require.Equal(t, []string{"STAT,1,0,40,15\n"}, caster.linesTo("c1"), "stat update")
	testutil.AssertEqual(t, "drop mob removed", room.Mob(world.LayerMain, mob.ID), (*world.Mob)(nil))

	// A second application is a no-op; the item is already consumed.
	caster.reset()
	d.ApplyPowerup(s, room, globe)
	testutil.AssertEqual(t, "no further messages", len(caster.sent), 0)
}

func TestPickupItem(t *testing.T) {
	d, caster := newTestDispatcher(t)
	s := startGame(t, d, "c1", "Alice")
	room := s.Room

	base, ok := d.catalogs.BaseItem("blaster")
	require.True(t, ok)
	drop := d.items.Create(base, d.rng)
	drop.Where = item.OnMap
	mob := room.MakeMob(world.LayerMain, base.Tile, 1, 1, 500, 400, 1, base.Color, world.TypeProp)
	mob.ItemID = drop.ID
	drop.MobID = mob.ID
	room.AddItem(drop)
	caster.reset()

	d.PickupItem(s, room, drop)

	testutil.AssertEqual(t, "item moved to inventory", drop.Where, item.InInventory)
	testutil.AssertEqual(t, "inventory holds it", s.Inventory.Get(drop.ID), drop)
	testutil.AssertEqual(t, "drop mob removed", room.Mob(world.LayerMain, mob.ID), (*world.Mob)(nil))

	var kinds []string
	for _, m := range caster.sent {
		kinds = append(kinds, m.kind+":"+m.line[:4])
	}
	require.Equal(t, []string{"room:DELM", "single:ADDI"}, kinds, "messages")
}

func TestTransit(t *testing.T) {
	d, caster := newTestDispatcher(t)
	s := startGame(t, d, "c1", "Alice")
	lobby := s.Room
	oldID := s.Avatar.ID
	caster.reset()

	require.NoError(t, d.Transit(s, "cave", 300, 200))

	testutil.AssertEqual(t, "current room", s.Room.MapID, "cave")
	testutil.AssertEqual(t, "left the lobby", lobby.Mob(world.LayerMain, oldID), (*world.Mob)(nil))
	testutil.AssertEqual(t, "avatar x", s.Avatar.X, 300)
	testutil.AssertEqual(t, "avatar y", s.Avatar.Y, 200)
	testutil.AssertEqual(t, "avatar in destination", s.Room.Mob(world.LayerMain, s.Avatar.ID), s.Avatar)

	// The destination is populated on first use: the map's prop plus the
	// two imps from the population table are replayed to the client.
	lines := caster.linesTo("c1")
	require.NotEmpty(t, lines)
	testutil.AssertEqual(t, "load line", lines[0], "LOAD,Cave,map_dark,cave\n")

	var addm, addp int
	for _, line := range lines[1:] {
		switch {
		case strings.HasPrefix(line, "ADDM,"):
			addm++
		case strings.HasPrefix(line, "ADDP,"):
			addp++
		}
	}
	testutil.AssertEqual(t, "replayed objects", addm, 3)
	testutil.AssertEqual(t, "own avatar announced", addp, 1)
}

func TestDisconnectCleanup(t *testing.T) {
	d, caster := newTestDispatcher(t)
	s := startGame(t, d, "c1", "Alice")
	room := s.Room
	avatarID := s.Avatar.ID
	caster.reset()

	d.process(context.Background(), Event{ConnID: "c1", Closed: true})

	testutil.AssertEqual(t, "sessions", d.sessions.Len(), 0)
	testutil.AssertEqual(t, "avatar removed", room.Mob(world.LayerMain, avatarID), (*world.Mob)(nil))
	require.Equal(t, []string{string(proto.DeleteMob(avatarID, world.LayerMain))},
		caster.roomLines(), "delete announced")
}

func TestPartialLineReassembly(t *testing.T) {
	d, caster := newTestDispatcher(t)
	startGame(t, d, "c1", "Alice")
	caster.reset()

	ctx := context.Background()
	d.process(ctx, Event{ConnID: "c1", Data: []byte("CHAT,hel")})
	testutil.AssertEqual(t, "no output before newline", len(caster.roomLines()), 0)

	d.process(ctx, Event{ConnID: "c1", Data: []byte("lo\nCHAT,wor")})
	require.Equal(t, []string{"CHAT,Alice,hello\n"}, caster.roomLines(), "first line complete")

	d.process(ctx, Event{ConnID: "c1", Data: []byte("ld\n")})
	require.Equal(t, []string{
		"CHAT,Alice,hello\n",
		"CHAT,Alice,world\n",
	}, caster.roomLines(), "second line complete")
}
