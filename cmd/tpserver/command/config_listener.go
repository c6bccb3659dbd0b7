package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-service"

	"github.com/tinyplaces/server/internal/listener"
)

type ListenerType int

const (
	ListenerTypeTcp ListenerType = iota
	ListenerTypeTelnet
	ListenerTypeWebsocket
)

func (lt *ListenerType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "tcp":
		*lt = ListenerTypeTcp
	case "telnet":
		*lt = ListenerTypeTelnet
	case "websocket":
		*lt = ListenerTypeWebsocket
	default:
		return fmt.Errorf("unknown listener type: %s", text)
	}
	return nil
}

type ListenerConfig struct {
	Protocol ListenerType `json:"protocol"`
	Port     uint16       `json:"port"`
}

func (cl *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	// The tcp listener falls back to the game's default port; the others
	// have no natural default.
	if cl.Port == 0 && cl.Protocol != ListenerTypeTcp {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}

	return el.Err()
}

func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) (service.Worker, error) {
	switch cl.Protocol {
	case ListenerTypeTcp:
		return listener.NewTcpListener(cl.Port, cm), nil
	case ListenerTypeTelnet:
		return listener.NewTelnetListener(cl.Port, cm), nil
	case ListenerTypeWebsocket:
		return listener.NewWebsocketListener(cl.Port, cm), nil
	default:
		return nil, fmt.Errorf("unknown listener type: %v", cl.Protocol)
	}
}
