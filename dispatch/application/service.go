package application

import (
	"time"

	"scheduler-sim/dispatch/domain"
)

const defaultRetryAfter = time.Second

// RateService decide se uma requisição de trabalho passa pelo portão de taxa.
// Não conhece a resposta ao cliente; só devolve a decisão.
type RateService struct {
	Store domain.LimiterStore
	// RetryAfter é o mínimo anunciado ao cliente recusado. <= 0 usa 1s.
	RetryAfter time.Duration
	// Now é opcional (testes).
	Now func() time.Time
}

func (s RateService) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	lim := s.Store.Get(key)
	if lim == nil {
		return domain.Decision{Allowed: true}
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	ok, wait := lim.Admit(now)
	if ok {
		return domain.Decision{Allowed: true}
	}

	floor := s.RetryAfter
	if floor <= 0 {
		floor = defaultRetryAfter
	}
	return domain.Decision{Allowed: false, RetryAfter: max(wait, floor)}
}
