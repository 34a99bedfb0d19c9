package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scheduler-sim/dispatch/domain"
)

// ConcurrencyService concentra a regra de aquisição de vagas com timeout
// opcional, sem saber nada sobre sockets.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
// - Se `AcquireTimeout <= 0`, espera indefinidamente (até ctx cancelar).
// - Se `AcquireTimeout > 0`, espera até o timeout e devolve ErrAdmissionTimeout.
// Sem Pool, toda requisição é admitida imediatamente.
func (s ConcurrencyService) Acquire(ctx context.Context) (*domain.Permit, error) {
	if s.Pool == nil {
		return domain.NewPermit(0, nil), nil
	}

	if s.AcquireTimeout <= 0 {
		return s.Pool.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	p, err := s.Pool.Acquire(acqCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("%w after %s", domain.ErrAdmissionTimeout, s.AcquireTimeout)
	}
	return p, err
}
