package application

import (
	"testing"
	"time"

	"scheduler-sim/dispatch/domain"
)

type fakeLimiter struct {
	ok   bool
	wait time.Duration
	at   *time.Time
}

func (f fakeLimiter) Admit(now time.Time) (bool, time.Duration) {
	if f.at != nil {
		*f.at = now
	}
	return f.ok, f.wait
}

type fakeStore struct {
	lim  domain.Limiter
	keys []domain.Key
}

func (s *fakeStore) Get(k domain.Key) domain.Limiter {
	s.keys = append(s.keys, k)
	return s.lim
}

func TestRateService_Decide_AllowsWhenNoStore(t *testing.T) {
	dec := RateService{}.Decide("10.0.0.1")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 when allowed, got %s", dec.RetryAfter)
	}
}

func TestRateService_Decide_AllowsWhenStoreHasNoLimiter(t *testing.T) {
	dec := RateService{Store: &fakeStore{}}.Decide("10.0.0.1")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
}

func TestRateService_Decide_PassesKeyAndClock(t *testing.T) {
	var seen time.Time
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := &fakeStore{lim: fakeLimiter{ok: true, at: &seen}}
	svc := RateService{Store: store, Now: func() time.Time { return fixed }}

	if dec := svc.Decide("10.0.0.7"); !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if len(store.keys) != 1 || store.keys[0] != "10.0.0.7" {
		t.Fatalf("unexpected keys: %v", store.keys)
	}
	if !seen.Equal(fixed) {
		t.Fatalf("limiter saw %s, want %s", seen, fixed)
	}
}

func TestRateService_Decide_UsesLimiterDelay(t *testing.T) {
	svc := RateService{Store: &fakeStore{lim: fakeLimiter{wait: 7 * time.Second}}, RetryAfter: 2 * time.Second}
	dec := svc.Decide("10.0.0.1")
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.RetryAfter != 7*time.Second {
		t.Fatalf("expected RetryAfter=7s, got %s", dec.RetryAfter)
	}
}

func TestRateService_Decide_RetryAfterFloor(t *testing.T) {
	cases := []struct {
		name       string
		retryAfter time.Duration
		wait       time.Duration
		want       time.Duration
	}{
		{"default floor", 0, 0, time.Second},
		{"short delay raised to default", 0, 300 * time.Millisecond, time.Second},
		{"configured floor", 2500 * time.Millisecond, time.Second, 2500 * time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := RateService{Store: &fakeStore{lim: fakeLimiter{wait: tc.wait}}, RetryAfter: tc.retryAfter}
			dec := svc.Decide("10.0.0.1")
			if dec.Allowed {
				t.Fatalf("expected blocked")
			}
			if dec.RetryAfter != tc.want {
				t.Fatalf("RetryAfter = %s, want %s", dec.RetryAfter, tc.want)
			}
		})
	}
}
