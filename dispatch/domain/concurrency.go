package domain

import (
	"context"
	"sync"
	"time"
)

// SlotPool representa um recurso com capacidade finita (vagas de processamento).
//
// A semântica é: Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Não existe modo de rejeição por lotação; exceder a capacidade bloqueia.
type SlotPool interface {
	Acquire(ctx context.Context) (*Permit, error)
	Capacity() int
	InUse() int
}

// Permit é a posse de uma vaga. Release devolve a vaga ao pool e pode ser
// chamado mais de uma vez: só a primeira chamada tem efeito.
type Permit struct {
	waited  time.Duration
	once    sync.Once
	release func()
}

func NewPermit(waited time.Duration, release func()) *Permit {
	return &Permit{waited: waited, release: release}
}

// Waited é o tempo bloqueado em Acquire até a concessão.
func (p *Permit) Waited() time.Duration {
	if p == nil {
		return 0
	}
	return p.waited
}

func (p *Permit) Release() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		if p.release != nil {
			p.release()
		}
	})
}

// Sequencer entrega números estritamente crescentes a partir de 1, sem
// duplicatas mesmo sob concorrência máxima.
type Sequencer interface {
	Next() uint64
}
