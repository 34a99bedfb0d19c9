package infra

import (
	"context"
	"sync"
	"time"

	"scheduler-sim/dispatch/domain"
)

type Counters struct {
	Requests   int64
	Succeeded  int64
	Failed     int64
	QueueWait  time.Duration
	Processing time.Duration
}

// AvgQueueWait devolve a espera média das requisições contadas.
func (c Counters) AvgQueueWait() time.Duration {
	if c.Requests == 0 {
		return 0
	}
	return c.QueueWait / time.Duration(c.Requests)
}

// AvgProcessing considera só as requisições concluídas com sucesso.
func (c Counters) AvgProcessing() time.Duration {
	if c.Succeeded == 0 {
		return 0
	}
	return c.Processing / time.Duration(c.Succeeded)
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não sobrevive a um restart.
type MemoryStatsStore struct {
	mu        sync.Mutex
	total     Counters
	byMode    map[domain.Mode]Counters
	byOutcome map[domain.Outcome]int64
	last      domain.Record
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{
		byMode:    make(map[domain.Mode]Counters),
		byOutcome: make(map[domain.Outcome]int64),
	}
}

func (s *MemoryStatsStore) Record(_ context.Context, rec domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = add(s.total, rec)
	s.byMode[rec.Mode] = add(s.byMode[rec.Mode], rec)
	s.byOutcome[rec.Outcome]++
	s.last = rec
	return nil
}

func add(c Counters, rec domain.Record) Counters {
	c.Requests++
	c.QueueWait += rec.QueueWait
	if rec.Succeeded() {
		c.Succeeded++
		c.Processing += rec.Processing
	} else {
		c.Failed++
	}
	return c
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Last devolve o Record mais recente (zero se nenhum).
func (s *MemoryStatsStore) Last() domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *MemoryStatsStore) ByMode() map[domain.Mode]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Mode]Counters, len(s.byMode))
	for k, v := range s.byMode {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByOutcome() map[domain.Outcome]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Outcome]int64, len(s.byOutcome))
	for k, v := range s.byOutcome {
		out[k] = v
	}
	return out
}
