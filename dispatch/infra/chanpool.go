package infra

import (
	"context"
	"time"

	"scheduler-sim/dispatch/domain"
)

type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um pool simples baseado em channel com capacidade `max`.
// Valores menores que 1 viram 1.
func NewChanPool(max int) domain.SlotPool {
	if max < 1 {
		max = 1
	}
	return &chanPool{sem: make(chan struct{}, max)}
}

// Acquire mede a espera a partir da entrada (antes de bloquear) até a concessão.
func (p *chanPool) Acquire(ctx context.Context) (*domain.Permit, error) {
	start := time.Now()
	select {
	case p.sem <- struct{}{}:
		return domain.NewPermit(time.Since(start), func() { <-p.sem }), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *chanPool) Capacity() int { return cap(p.sem) }
func (p *chanPool) InUse() int    { return len(p.sem) }
