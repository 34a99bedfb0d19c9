package infra

import "sync/atomic"

// AtomicSequencer é o contador de requisições do processo. Começa em 1.
type AtomicSequencer struct {
	n atomic.Uint64
}

func NewSequencer() *AtomicSequencer { return &AtomicSequencer{} }

func (s *AtomicSequencer) Next() uint64 { return s.n.Add(1) }

// Last devolve o último número emitido (0 se nenhum).
func (s *AtomicSequencer) Last() uint64 { return s.n.Load() }
