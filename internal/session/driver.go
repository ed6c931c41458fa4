package session

import (
	"context"
	"time"
)

// Driver calls tick at its own cadence until ctx is done or tick fails.
type Driver interface {
	Run(ctx context.Context, tick func() error) error
}

// TickerDriver ticks on a wall-clock period.
type TickerDriver struct {
	Period time.Duration
}

func (d TickerDriver) Run(ctx context.Context, tick func() error) error {
	t := time.NewTicker(d.Period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := tick(); err != nil {
				return err
			}
		}
	}
}

// StepDriver ticks a fixed number of times as fast as possible.
type StepDriver struct {
	Steps int
}

func (d StepDriver) Run(ctx context.Context, tick func() error) error {
	for i := 0; i < d.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := tick(); err != nil {
			return err
		}
	}
	return nil
}
