package authz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func seededMemStore() *MemStore {
	m := NewMemStore()
	m.Seed(Credential{
		ClientID: "car_A",
		VIN:      "VIN0001",
		Model:    "Model S",
		Year:     2023,
		Scopes:   "engine_start door_lock telemetry_basic",
	}, "s3cret")
	return m
}

func TestMemStoreVerifyCredentials(t *testing.T) {
	m := seededMemStore()
	ctx := context.Background()

	cred, err := m.VerifyCredentials(ctx, "car_A", "s3cret")
	if err != nil {
		t.Fatalf("VerifyCredentials: %v", err)
	}
	if cred.VIN != "VIN0001" || cred.Model != "Model S" {
		t.Fatalf("credential: %+v", cred)
	}

	if _, err := m.VerifyCredentials(ctx, "car_A", "wrong"); !errors.Is(err, ErrUnknownClient) {
		t.Fatalf("bad secret: %v, want ErrUnknownClient", err)
	}
	if _, err := m.VerifyCredentials(ctx, "ghost", "s3cret"); !errors.Is(err, ErrUnknownClient) {
		t.Fatalf("unknown client: %v, want ErrUnknownClient", err)
	}
}

func TestMemStoreConsumeCode(t *testing.T) {
	m := seededMemStore()
	ctx := context.Background()
	now := time.Now().UTC()

	code := Code{
		Code:      "abc123",
		ClientID:  "car_A",
		VIN:       "VIN0001",
		Scope:     "engine_start",
		ExpiresAt: now.Add(10 * time.Minute),
	}
	if err := m.SaveCode(ctx, code); err != nil {
		t.Fatalf("SaveCode: %v", err)
	}

	// чужой client_id код не сжигает
	if _, err := m.ConsumeCode(ctx, "abc123", "car_B", now); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("foreign client: %v", err)
	}

	got, err := m.ConsumeCode(ctx, "abc123", "car_A", now)
	if err != nil {
		t.Fatalf("ConsumeCode: %v", err)
	}
	if got.Scope != "engine_start" {
		t.Fatalf("scope: %q", got.Scope)
	}

	// повтор — отказ
	if _, err := m.ConsumeCode(ctx, "abc123", "car_A", now); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("second consume: %v, want ErrCodeInvalid", err)
	}
}

func TestMemStoreConsumeExpired(t *testing.T) {
	m := seededMemStore()
	ctx := context.Background()
	now := time.Now().UTC()

	_ = m.SaveCode(ctx, Code{
		Code:      "old",
		ClientID:  "car_A",
		ExpiresAt: now.Add(-time.Second),
	})
	if _, err := m.ConsumeCode(ctx, "old", "car_A", now); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expired code: %v, want ErrCodeInvalid", err)
	}
}

// Гонка за один код: из N конкурентов побеждает ровно один.
func TestMemStoreConsumeRace(t *testing.T) {
	m := seededMemStore()
	ctx := context.Background()
	now := time.Now().UTC()

	_ = m.SaveCode(ctx, Code{
		Code:      "contested",
		ClientID:  "car_A",
		Scope:     "engine_start",
		ExpiresAt: now.Add(time.Minute),
	})

	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.ConsumeCode(ctx, "contested", "car_A", now); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
}
