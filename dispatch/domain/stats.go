package domain

import "context"

// RecordSink recebe cada Record finalizado (sucesso ou falha).
//
// Implementações podem agregar em memória, Redis, Prometheus, NATS etc.
// O despachante trata erro como best-effort (não derruba a requisição).
type RecordSink interface {
	Record(ctx context.Context, rec Record) error
}

// ModeObserver é notificado a cada diretiva de controle processada.
type ModeObserver interface {
	ModeDirective(mode Mode, applied bool)
}
