package dispatch

import (
	"fmt"
	"strings"

	"github.com/tinyplaces/server/internal/proto"
	"github.com/tinyplaces/server/internal/session"
)

// handleChat relays room chat. The text is everything after the verb and
// may contain commas. Lines starting with a slash are chat commands and
// are not relayed.
func (d *Dispatcher) handleChat(s *session.Session, cmd proto.Command) error {
	text := strings.TrimRight(cmd.Rest(0), "\r\n")
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "/") {
		return d.handleChatCommand(s, text)
	}

	if s.Room == nil {
		return fmt.Errorf("no current room")
	}
	d.caster.Roomcast(s.Room, proto.Chat(s.Name, text))
	return nil
}

func (d *Dispatcher) handleChatCommand(s *session.Session, text string) error {
	if strings.HasPrefix(text, "/color") {
		return d.changePlayerColor(s, text)
	}
	return fmt.Errorf("unknown chat command: %s", text)
}

// changePlayerColor rewrites the avatar's color from "/color r g b [a]".
// A missing alpha defaults to opaque. The change is published as a normal
// mob update.
func (d *Dispatcher) changePlayerColor(s *session.Session, text string) error {
	if s.Avatar == nil {
		return fmt.Errorf("no avatar to color")
	}

	color := strings.TrimSpace(strings.TrimPrefix(text, "/color"))
	parts := strings.Fields(color)
	if len(parts) < 3 {
		d.caster.Singlecast(s.ConnID, proto.Chat("System",
			fmt.Sprintf("1 0.5 0 1,Colors need three components at least, but only %d were given.", len(parts))))
		return nil
	}
	if len(parts) == 3 {
		// add default alpha value if it was omitted
		color += " 1"
	}

	d.updateMob(s, s.Avatar, color)
	return nil
}
