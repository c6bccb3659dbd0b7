package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string           `json:"tick_interval"`
	Listeners    []ListenerConfig `json:"listeners"`
	Nats         NatsConfig       `json:"nats"`
	Catalog      CatalogConfig    `json:"catalog"`
	Data         DataConfig       `json:"data"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < 10*time.Millisecond {
			el.Add(fmt.Errorf("tick_interval must be at least 10ms"))
		}
	}

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Nats.validate())
	el.Add(c.Catalog.validate())
	el.Add(c.Data.validate())

	return el.Err()
}

func (c *Config) tickInterval() (time.Duration, error) {
	if c.TickInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(c.TickInterval)
}
