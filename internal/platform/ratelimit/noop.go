package ratelimit

import (
	"context"

	"github.com/letsettle/letsettle/internal/domain"
)

// Noop is the disabled limiter strategy.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

func (Noop) Check(ctx context.Context, b domain.Ballot) error {
	return nil
}
