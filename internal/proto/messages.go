package proto

import (
	"strconv"
	"strings"
)

// Builders for every outbound message. All of them return a complete wire
// line including the trailing newline.

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 32)
}

func line(verb string, fields ...string) []byte {
	var sb strings.Builder
	sb.WriteString(verb)
	for _, f := range fields {
		sb.WriteByte(',')
		sb.WriteString(f)
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}

// AddPlayer confirms a freshly spawned avatar to its own connection.
func AddPlayer(id int, name string, layer, tile, frames, phases, x, y int, scale float64, color string) []byte {
	return line("ADDP",
		strconv.Itoa(id), name, strconv.Itoa(layer),
		strconv.Itoa(tile), strconv.Itoa(frames), strconv.Itoa(phases),
		strconv.Itoa(x), strconv.Itoa(y), formatFloat(scale), color)
}

// AddMob announces a new map object to a room. name is "n" for objects
// without a display name.
func AddMob(id int, name string, layer, tile, frames, phases, x, y int, scale float64, color string, mobType int) []byte {
	return line("ADDM",
		strconv.Itoa(id), name, strconv.Itoa(layer),
		strconv.Itoa(tile), strconv.Itoa(frames), strconv.Itoa(phases),
		strconv.Itoa(x), strconv.Itoa(y), formatFloat(scale), color,
		strconv.Itoa(mobType))
}

func UpdateMob(id, layer, tile, x, y int, scale float64, color string) []byte {
	return line("UPDM",
		strconv.Itoa(id), strconv.Itoa(layer), strconv.Itoa(tile),
		strconv.Itoa(x), strconv.Itoa(y), formatFloat(scale), color)
}

func DeleteMob(id, layer int) []byte {
	return line("DELM", strconv.Itoa(id), strconv.Itoa(layer))
}

func Move(id, layer, x, y, speed int, pattern string) []byte {
	return line("MOVE",
		strconv.Itoa(id), strconv.Itoa(layer),
		strconv.Itoa(x), strconv.Itoa(y), strconv.Itoa(speed), pattern)
}

func Fire(shooterID, projectileID, layer int, ptype string, castTime, x, y, speed int) []byte {
	return line("FIRE",
		strconv.Itoa(shooterID), strconv.Itoa(projectileID), strconv.Itoa(layer),
		ptype, strconv.Itoa(castTime),
		strconv.Itoa(x), strconv.Itoa(y), strconv.Itoa(speed))
}

func Chat(sender, text string) []byte {
	return line("CHAT", sender, text)
}

// SystemChat is the server speaking to a single client.
func SystemChat(text string) []byte {
	return Chat("System", text)
}

func Load(roomName, backdrop, filename string) []byte {
	return line("LOAD", roomName, backdrop, filename)
}

func Anim(animType, layer, x, y int) []byte {
	return line("ANIM",
		strconv.Itoa(animType), strconv.Itoa(layer),
		strconv.Itoa(x), strconv.Itoa(y))
}

// AddItem announces an item to a client (inventory placement) or to a room
// (dropped on the map). ownerMobID is "-" for items without an owner.
func AddItem(ownerMobID string, baseID string, itemID, mobID int, name, class, itype string,
	baseValue, tile int, color string, scale float64, shadowTile int, shadowScale float64,
	where, x, y, energyDamage, physicalDamage int, description string) []byte {

	return line("ADDI",
		ownerMobID, baseID, strconv.Itoa(itemID), strconv.Itoa(mobID),
		name, class, itype, strconv.Itoa(baseValue), strconv.Itoa(tile),
		color, formatFloat(scale), strconv.Itoa(shadowTile), formatFloat(shadowScale),
		strconv.Itoa(where), strconv.Itoa(x), strconv.Itoa(y),
		strconv.Itoa(energyDamage), strconv.Itoa(physicalDamage), description)
}

// StatEntry is one named value in a stat summary.
type StatEntry struct {
	Index int
	Min   int
	Max   int
	Value int
}

// Stat formats a single stat update.
func Stat(s StatEntry) []byte {
	return Stats([]StatEntry{s})
}

// Stats formats a full stat summary as repeated (index,min,max,value) groups.
func Stats(entries []StatEntry) []byte {
	fields := make([]string, 0, len(entries)*4)
	for _, s := range entries {
		fields = append(fields,
			strconv.Itoa(s.Index), strconv.Itoa(s.Min),
			strconv.Itoa(s.Max), strconv.Itoa(s.Value))
	}
	return line("STAT", fields...)
}
