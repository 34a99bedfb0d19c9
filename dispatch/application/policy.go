package application

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"scheduler-sim/dispatch/domain"
)

// PolicyConfig define as durações simuladas de cada modo.
type PolicyConfig struct {
	FIFODuration    time.Duration `yaml:"fifo_duration"`
	RRBursts        int           `yaml:"rr_bursts"`
	RRBurstDuration time.Duration `yaml:"rr_burst_duration"`
	PriorityMin     time.Duration `yaml:"priority_min"`
	PriorityMax     time.Duration `yaml:"priority_max"`
}

func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		FIFODuration:    3 * time.Second,
		RRBursts:        3,
		RRBurstDuration: 1 * time.Second,
		PriorityMin:     1 * time.Second,
		PriorityMax:     2 * time.Second,
	}
}

func (c PolicyConfig) normalized() PolicyConfig {
	if c.FIFODuration < 0 {
		c.FIFODuration = 0
	}
	if c.RRBursts < 1 {
		c.RRBursts = 1
	}
	if c.RRBurstDuration < 0 {
		c.RRBurstDuration = 0
	}
	if c.PriorityMin < 0 {
		c.PriorityMin = 0
	}
	if c.PriorityMax < c.PriorityMin {
		c.PriorityMin, c.PriorityMax = c.PriorityMax, c.PriorityMin
		if c.PriorityMin < 0 {
			c.PriorityMin = 0
		}
	}
	return c
}

// Policy guarda o modo de escalonamento vigente e traduz cada modo em um
// tempo de trabalho simulado.
//
// O modo é uma célula atômica: leitores concorrentes nunca veem um valor
// parcial e só o caminho de controle escreve (via Set).
type Policy struct {
	cfg  PolicyConfig
	mode atomic.Int32
	// randN devolve um inteiro uniforme em [0, n).
	randN func(n int64) int64
}

func NewPolicy(initial domain.Mode, cfg PolicyConfig) *Policy {
	if !initial.Valid() {
		initial = domain.ModeFIFO
	}
	p := &Policy{cfg: cfg.normalized(), randN: rand.Int64N}
	p.mode.Store(int32(initial))
	return p
}

func (p *Policy) Config() PolicyConfig { return p.cfg }

func (p *Policy) Get() domain.Mode {
	return domain.Mode(p.mode.Load())
}

// Set troca o modo se candidate for reconhecido. Caso contrário o estado
// não muda e o retorno é false.
func (p *Policy) Set(candidate string) bool {
	m, err := domain.ParseMode(candidate)
	if err != nil {
		return false
	}
	p.mode.Store(int32(m))
	return true
}

// Plan devolve as rajadas de trabalho de uma requisição em mode. PRIORITY
// sorteia um valor novo a cada chamada.
func (p *Policy) Plan(mode domain.Mode) []time.Duration {
	switch mode {
	case domain.ModeRoundRobin:
		bursts := make([]time.Duration, p.cfg.RRBursts)
		for i := range bursts {
			bursts[i] = p.cfg.RRBurstDuration
		}
		return bursts
	case domain.ModePriority:
		return []time.Duration{p.priorityDelay()}
	default:
		return []time.Duration{p.cfg.FIFODuration}
	}
}

func (p *Policy) priorityDelay() time.Duration {
	span := int64(p.cfg.PriorityMax - p.cfg.PriorityMin)
	if span <= 0 {
		return p.cfg.PriorityMin
	}
	return p.cfg.PriorityMin + time.Duration(p.randN(span+1))
}

// SimulatedDelay é a soma do Plan de mode.
func (p *Policy) SimulatedDelay(mode domain.Mode) time.Duration {
	var total time.Duration
	for _, d := range p.Plan(mode) {
		total += d
	}
	return total
}

// Simulate executa as rajadas de mode em sequência e devolve o tempo
// efetivamente dormido. Se ctx encerrar no meio, retorna ctx.Err().
func (p *Policy) Simulate(ctx context.Context, mode domain.Mode) (time.Duration, error) {
	var slept time.Duration
	for _, d := range p.Plan(mode) {
		if err := sleep(ctx, d); err != nil {
			return slept, err
		}
		slept += d
	}
	return slept, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
