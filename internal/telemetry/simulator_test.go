package telemetry

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"torq/internal/logs"
)

func TestMain(m *testing.M) {
	logs.Init(logs.Options{Level: "error"})
	os.Exit(m.Run())
}

func TestMemStoreGetPut(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "car_A"); err != ErrNoData {
		t.Fatalf("empty store: %v, want ErrNoData", err)
	}

	snap := SeedSnapshot("Model S", 2023, 1)
	if err := s.Put(ctx, "car_A", snap); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, "car_A")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.VehicleType != "Model S 2023" {
		t.Fatalf("vehicle_type: %q", got.VehicleType)
	}

	// List отдаёт копию: мутация результата не трогает хранилище
	all, _ := s.List(ctx)
	m := all["car_A"]
	m.Speed = -1
	all["car_A"] = m
	got, _ = s.Get(ctx, "car_A")
	if got.Speed == -1 {
		t.Fatal("List must return a copy")
	}
}

func percent(t *testing.T, s string) int {
	t.Helper()
	v, err := strconv.Atoi(strings.TrimSuffix(s, "%"))
	if err != nil {
		t.Fatalf("bad percent %q: %v", s, err)
	}
	return v
}

func TestPerturbBounds(t *testing.T) {
	sim := NewSimulator(NewMemStore(), time.Minute)
	snap := SeedSnapshot("Model S", 2023, 1)

	for i := 0; i < 2000; i++ {
		snap = sim.Perturb(snap)

		if snap.Speed < 0 || snap.Speed > 120 {
			t.Fatalf("speed out of range: %d", snap.Speed)
		}
		if snap.BatteryLevel < 5 || snap.BatteryLevel > 100 {
			t.Fatalf("battery out of range: %d", snap.BatteryLevel)
		}
		if snap.EngineTemp < 80 || snap.EngineTemp > 95 {
			t.Fatalf("engine temp out of range: %d", snap.EngineTemp)
		}
		for _, p := range []float64{
			snap.TirePressure.FrontLeft, snap.TirePressure.FrontRight,
			snap.TirePressure.RearLeft, snap.TirePressure.RearRight,
		} {
			if p < 30.0 || p > 36.0 {
				t.Fatalf("tire pressure out of range: %v", p)
			}
		}
		if bh := percent(t, snap.Maintenance.BatteryHealth); bh < 70 || bh > 100 {
			t.Fatalf("battery health out of range: %d", bh)
		}
		if bw := percent(t, snap.Maintenance.BrakePadWear); bw < 60 || bw > 100 {
			t.Fatalf("brake pad wear out of range: %d", bw)
		}
	}
}

// Одно возмущение меняет батарею не более чем на 5 пунктов.
func TestPerturbBatteryStep(t *testing.T) {
	sim := NewSimulator(NewMemStore(), time.Minute)
	snap := SeedSnapshot("Model S", 2023, 1)
	for i := 0; i < 500; i++ {
		prev := snap.BatteryLevel
		snap = sim.Perturb(snap)
		d := snap.BatteryLevel - prev
		if d < -5 || d > 5 {
			// кламп на границах допускает меньший шаг, но не больший
			if prev-5 >= 5 && prev+5 <= 100 {
				t.Fatalf("battery step %d from %d", d, prev)
			}
		}
	}
}

func TestTickUpdatesFleet(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	_ = s.Put(ctx, "car_A", SeedSnapshot("Model S", 2023, 1))
	_ = s.Put(ctx, "car_B", SeedSnapshot("Model 3", 2024, 2))

	sim := NewSimulator(s, time.Minute)
	if err := sim.Tick(ctx); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	all, _ := s.List(ctx)
	if len(all) != 2 {
		t.Fatalf("fleet size after tick: %d", len(all))
	}
	for id, snap := range all {
		if snap.VehicleType == "" {
			t.Fatalf("%s lost vehicle_type on tick", id)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := NewMemStore()
	sim := NewSimulator(s, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sim.Run(ctx)
		close(done)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("simulator did not stop on context cancel")
	}
}

func TestSeedSnapshotSpread(t *testing.T) {
	a := SeedSnapshot("Model S", 2023, 1)
	b := SeedSnapshot("Model S", 2023, 2)
	if a.Speed == b.Speed && a.BatteryLevel == b.BatteryLevel && a.Location == b.Location {
		t.Fatal("seeded snapshots must differ between vehicles")
	}
}
