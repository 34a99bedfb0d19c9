package domain

// Contratos do portão de taxa aplicado às requisições de trabalho.

import "time"

// Key identifica um cliente (o host remoto da conexão).
type Key string

// Limiter decide se o cliente pode ser admitido em now. Quando não pode,
// retryAfter é quanto falta para o próximo token (0 se desconhecido).
// Uma recusa não consome token.
type Limiter interface {
	Admit(now time.Time) (ok bool, retryAfter time.Duration)
}

// LimiterStore obtém o limiter de um cliente, criando-o se preciso.
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter vai no header Retry-After quando a requisição é recusada.
	RetryAfter time.Duration
}
