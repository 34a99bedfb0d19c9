package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"scheduler-sim/dispatch/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_DefaultDurations(t *testing.T) {
	p := NewPolicy(domain.ModeFIFO, DefaultPolicyConfig())

	assert.Equal(t, []time.Duration{3 * time.Second}, p.Plan(domain.ModeFIFO))
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, p.Plan(domain.ModeRoundRobin))
	assert.Equal(t, 3*time.Second, p.SimulatedDelay(domain.ModeRoundRobin))

	for i := 0; i < 100; i++ {
		d := p.SimulatedDelay(domain.ModePriority)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 2*time.Second)
	}
}

func TestPolicy_SetAcceptsKnownModesOnly(t *testing.T) {
	p := NewPolicy(domain.ModeFIFO, DefaultPolicyConfig())

	assert.True(t, p.Set("rr"))
	assert.Equal(t, domain.ModeRoundRobin, p.Get())

	assert.False(t, p.Set("BOGUS"))
	assert.Equal(t, domain.ModeRoundRobin, p.Get())

	assert.True(t, p.Set("ROUND_ROBIN"))
	assert.True(t, p.Set("Priority"))
	assert.Equal(t, domain.ModePriority, p.Get())
}

func TestPolicy_InvalidInitialModeFallsBackToFIFO(t *testing.T) {
	p := NewPolicy(domain.Mode(42), DefaultPolicyConfig())
	assert.Equal(t, domain.ModeFIFO, p.Get())
}

func TestPolicy_PriorityUsesInjectedRandomness(t *testing.T) {
	p := NewPolicy(domain.ModePriority, PolicyConfig{PriorityMin: time.Second, PriorityMax: 2 * time.Second})
	p.randN = func(n int64) int64 { return n - 1 }
	assert.Equal(t, 2*time.Second, p.SimulatedDelay(domain.ModePriority))
	p.randN = func(int64) int64 { return 0 }
	assert.Equal(t, time.Second, p.SimulatedDelay(domain.ModePriority))
}

func TestPolicy_NormalizesConfig(t *testing.T) {
	p := NewPolicy(domain.ModeFIFO, PolicyConfig{RRBursts: 0, PriorityMin: 2 * time.Second, PriorityMax: time.Second})
	cfg := p.Config()
	assert.Equal(t, 1, cfg.RRBursts)
	assert.Equal(t, time.Second, cfg.PriorityMin)
	assert.Equal(t, 2*time.Second, cfg.PriorityMax)
}

func TestPolicy_SimulateSleepsForPlan(t *testing.T) {
	p := NewPolicy(domain.ModeRoundRobin, PolicyConfig{RRBursts: 3, RRBurstDuration: 15 * time.Millisecond})

	start := time.Now()
	slept, err := p.Simulate(context.Background(), domain.ModeRoundRobin)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Millisecond, slept)
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
}

func TestPolicy_SimulateStopsOnCancel(t *testing.T) {
	p := NewPolicy(domain.ModeFIFO, PolicyConfig{FIFODuration: time.Minute})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Simulate(ctx, domain.ModeFIFO)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPolicy_ConcurrentGetSet(t *testing.T) {
	p := NewPolicy(domain.ModeFIFO, DefaultPolicyConfig())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				p.Set([]string{"FIFO", "RR", "PRIORITY"}[j%3])
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if m := p.Get(); !m.Valid() {
					t.Errorf("observed invalid mode %d", m)
				}
			}
		}()
	}
	wg.Wait()
}
