package workflow

import (
	"context"

	"go.uber.org/multierr"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
)

// Compensator collects undo steps while a multi-stage operation makes
// side effects, so a later failure can roll back the earlier stages.
// Steps run in reverse registration order.
type Compensator struct {
	steps []step
}

type step struct {
	name string
	fn   func(context.Context) error
}

func NewCompensator() *Compensator {
	return &Compensator{}
}

// Add registers an undo step for a side effect that just succeeded.
func (c *Compensator) Add(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	c.steps = append(c.steps, step{name: name, fn: fn})
}

// Run executes all registered steps newest-first. Every step runs even
// if earlier ones fail; failures are aggregated and returned.
func (c *Compensator) Run(ctx context.Context, logg *logger.Logger) error {
	var combined error
	for i := len(c.steps) - 1; i >= 0; i-- {
		s := c.steps[i]
		if err := s.fn(ctx); err != nil {
			combined = multierr.Append(combined, err)
			if logg != nil {
				logg.Error(logg.WithField(ctx, "step", s.name), "compensation step failed", err)
			}
		}
	}
	c.steps = nil
	return combined
}

// Clear drops all registered steps. Call when the operation succeeds
// and no rollback is needed.
func (c *Compensator) Clear() {
	c.steps = nil
}
