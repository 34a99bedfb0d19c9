package infra

import (
	"context"
	"testing"
	"time"

	"scheduler-sim/dispatch/domain"
)

func TestClientBuckets_SameKeySharesBucket(t *testing.T) {
	s := NewClientBuckets(10, 1)

	if s.Get(domain.Key("10.0.0.1")) != s.Get(domain.Key("10.0.0.1")) {
		t.Fatalf("expected the same bucket for the same client")
	}
	if s.Get(domain.Key("10.0.0.2")) == s.Get(domain.Key("10.0.0.1")) {
		t.Fatalf("expected distinct buckets for distinct clients")
	}
	if s.Len() != 2 {
		t.Fatalf("expected two clients, got %d", s.Len())
	}
}

func TestClientBuckets_RefusalReportsDelayWithoutSpendingToken(t *testing.T) {
	s := NewClientBuckets(1, 1)
	lim := s.Get(domain.Key("10.0.0.1"))
	now := time.Now()

	if ok, _ := lim.Admit(now); !ok {
		t.Fatalf("expected first admit to pass")
	}
	ok, wait := lim.Admit(now)
	if ok {
		t.Fatalf("expected second immediate admit to be refused (burst=1)")
	}
	if wait < 900*time.Millisecond || wait > time.Second {
		t.Fatalf("expected ~1s until next token, got %s", wait)
	}

	// A recusa não reservou token: um segundo depois o cliente volta a passar.
	if ok, _ := lim.Admit(now.Add(time.Second)); !ok {
		t.Fatalf("expected admit after refill")
	}
}

func TestClientBuckets_ZeroBurstNeverAdmits(t *testing.T) {
	lim := NewClientBuckets(10, 0).Get(domain.Key("10.0.0.1"))
	ok, wait := lim.Admit(time.Now())
	if ok || wait != 0 {
		t.Fatalf("expected refusal without delay, got ok=%v wait=%s", ok, wait)
	}
}

func TestClientBuckets_SweepRemovesIdleClients(t *testing.T) {
	s := NewClientBuckets(10, 1, WithIdleTTL(time.Minute), WithSweepEvery(0))

	before := s.Get(domain.Key("10.0.0.1"))
	s.Get(domain.Key("10.0.0.2"))

	if n := s.Sweep(time.Now()); n != 0 {
		t.Fatalf("expected nothing evicted yet, got %d", n)
	}
	if n := s.Sweep(time.Now().Add(2 * time.Minute)); n != 2 {
		t.Fatalf("expected two evicted, got %d", n)
	}
	if s.Get(domain.Key("10.0.0.1")) == before {
		t.Fatalf("expected bucket to be recreated after sweep")
	}
}

func TestClientBuckets_JanitorStopsWithContext(t *testing.T) {
	s := NewClientBuckets(10, 1, WithIdleTTL(time.Millisecond), WithSweepEvery(2*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartJanitor(ctx)

	s.Get(domain.Key("10.0.0.1"))
	deadline := time.Now().Add(500 * time.Millisecond)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("janitor did not evict idle client")
		}
		time.Sleep(2 * time.Millisecond)
	}
}
