package command

import (
	"fmt"

	"github.com/pixil98/go-service"

	"github.com/tinyplaces/server/internal/dispatch"
	"github.com/tinyplaces/server/internal/item"
	"github.com/tinyplaces/server/internal/listener"
	"github.com/tinyplaces/server/internal/messaging"
	"github.com/tinyplaces/server/internal/session"
	"github.com/tinyplaces/server/internal/sim"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Create the embedded nats server
	nats, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Load the content catalogs
	catalogs, err := cfg.Catalog.loadCatalogs()
	if err != nil {
		return nil, fmt.Errorf("loading catalogs: %w", err)
	}

	rooms := cfg.Data.buildRegistry()
	accounts := cfg.Data.buildAccountStore()
	sessions := session.NewTable()
	items := item.NewBuilder()

	caster := messaging.NewCaster(nats, sessions)

	// Create the command dispatcher
	dispatcher := dispatch.NewDispatcher(dispatch.Deps{
		Caster:    caster,
		Sessions:  sessions,
		Accounts:  accounts,
		Catalogs:  catalogs,
		Rooms:     rooms,
		Items:     items,
		StartRoom: cfg.Data.StartRoom,
	})

	// Create Listeners
	cm := listener.NewConnectionManager(nats, dispatcher, cfg.Data.QueueSize)
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lst, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lst
	}

	// Setup the simulation driver
	engine := sim.NewEngine(rooms, catalogs, sessions, items, caster, dispatcher)

	var driverOpts []sim.DriverOpt
	tick, err := cfg.tickInterval()
	if err != nil {
		return nil, fmt.Errorf("parsing tick_interval: %w", err)
	}
	if tick > 0 {
		driverOpts = append(driverOpts, sim.WithTickLength(tick))
	}
	driver := sim.NewDriver([]sim.Manager{engine}, driverOpts...)

	// Create a worker list
	return service.WorkerList{
		"nats":       nats,
		"dispatcher": dispatcher,
		"driver":     driver,
		"listeners":  &listeners,
	}, nil
}
