// Package sim advances world time. The driver ticks on a fixed period and
// hands each manager the measured elapsed time, so simulation speed stays
// correct even when a tick runs long.
package sim

import (
	"context"
	"time"
)

const (
	DefaultTickLength = 100 * time.Millisecond
)

type Manager interface {
	Tick(ctx context.Context, dt time.Duration) error
}

type Driver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := d.Tick(ctx, dt); err != nil {
				return err
			}
		}
	}
}

func (d *Driver) Tick(ctx context.Context, dt time.Duration) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx, dt); err != nil {
			return err
		}
	}
	return nil
}
