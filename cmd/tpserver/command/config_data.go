package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/tinyplaces/server/internal/session"
	"github.com/tinyplaces/server/internal/world"
)

type DataConfig struct {
	MapsDir    string `json:"maps_dir"`
	PlayersDir string `json:"players_dir"`
	StartRoom  string `json:"start_room"`
	QueueSize  int    `json:"send_queue_size"`
}

func (d *DataConfig) validate() error {
	el := errors.NewErrorList()

	if d.MapsDir == "" {
		el.Add(fmt.Errorf("maps_dir must be set"))
	}
	if d.PlayersDir == "" {
		el.Add(fmt.Errorf("players_dir must be set"))
	}
	if d.QueueSize < 0 {
		el.Add(fmt.Errorf("send_queue_size must not be negative"))
	}

	return el.Err()
}

func (d *DataConfig) buildRegistry() *world.Registry {
	return world.NewRegistry(d.MapsDir)
}

func (d *DataConfig) buildAccountStore() *session.AccountStore {
	return session.NewAccountStore(d.PlayersDir)
}
