package infra

import (
	"context"
	"sync"
	"time"

	"scheduler-sim/dispatch/domain"

	"github.com/go-logr/logr"
	"golang.org/x/time/rate"
)

// ClientBuckets mantém um token bucket (x/time/rate) por cliente para o
// portão de taxa. Clientes sem requisições há mais de idleTTL são varridos.
type ClientBuckets struct {
	mu      sync.Mutex
	clients map[domain.Key]*clientBucket

	rps        rate.Limit
	burst      int
	idleTTL    time.Duration
	sweepEvery time.Duration
	log        logr.Logger
}

type clientBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Admit reserva um token; se ele não estiver disponível agora a reserva é
// desfeita e o atraso até o próximo token é devolvido.
func (b *clientBucket) Admit(now time.Time) (bool, time.Duration) {
	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	wait := r.DelayFrom(now)
	if wait == 0 {
		return true, 0
	}
	r.CancelAt(now)
	return false, wait
}

type BucketsOption func(*ClientBuckets)

func WithIdleTTL(d time.Duration) BucketsOption {
	return func(s *ClientBuckets) { s.idleTTL = d }
}

// WithSweepEvery define o intervalo do janitor. <= 0 desliga o janitor.
func WithSweepEvery(d time.Duration) BucketsOption {
	return func(s *ClientBuckets) { s.sweepEvery = d }
}

func WithBucketsLogger(log logr.Logger) BucketsOption {
	return func(s *ClientBuckets) { s.log = log }
}

func NewClientBuckets(rps float64, burst int, opts ...BucketsOption) *ClientBuckets {
	s := &ClientBuckets{
		clients:    make(map[domain.Key]*clientBucket),
		rps:        rate.Limit(rps),
		burst:      burst,
		idleTTL:    15 * time.Minute,
		sweepEvery: 2 * time.Minute,
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len devolve quantos clientes têm bucket ativo.
func (s *ClientBuckets) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Get implementa domain.LimiterStore.
func (s *ClientBuckets) Get(key domain.Key) domain.Limiter {
	return s.bucket(key, time.Now())
}

func (s *ClientBuckets) bucket(key domain.Key, now time.Time) *clientBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.clients[key]; ok {
		b.lastSeen = now
		return b
	}
	b := &clientBucket{lim: rate.NewLimiter(s.rps, s.burst), lastSeen: now}
	s.clients[key] = b
	return b
}

// Sweep remove os clientes vistos pela última vez antes de now-idleTTL e
// devolve quantos saíram.
func (s *ClientBuckets) Sweep(now time.Time) int {
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for k, b := range s.clients {
		if b.lastSeen.Before(cutoff) {
			delete(s.clients, k)
			evicted++
		}
	}
	return evicted
}

// StartJanitor varre clientes inativos a cada sweepEvery até ctx encerrar.
func (s *ClientBuckets) StartJanitor(ctx context.Context) {
	if s.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(s.sweepEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if n := s.Sweep(now); n > 0 {
					s.log.V(1).Info("evicted idle rate buckets", "evicted", n, "remaining", s.Len())
				}
			}
		}
	}()
}
