package telemetry

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"torq/internal/logs"
)

// Simulator раз в interval переписывает показания всех машин.
// Живёт в горутине под контекстом приложения: cancel контекста —
// штатная остановка, никаких detached-потоков.
type Simulator struct {
	store    Store
	interval time.Duration
	rnd      *rand.Rand
}

func NewSimulator(store Store, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Simulator{
		store:    store,
		interval: interval,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulator) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			logs.Logger.Info("telemetry simulator stopped")
			return
		case <-t.C:
			if err := s.Tick(ctx); err != nil {
				logs.Logger.Errorf("telemetry tick: %v", err)
			}
		}
	}
}

// Tick — один проход по флоту. Каждый снапшот заменяется целиком через
// Put, так что читатель видит либо старую, либо новую версию.
func (s *Simulator) Tick(ctx context.Context) error {
	all, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	for clientID, snap := range all {
		next := s.Perturb(snap)
		if err := s.store.Put(ctx, clientID, next); err != nil {
			return err
		}
	}
	logs.Logger.Debugf("telemetry updated for %d vehicles", len(all))
	return nil
}

// Perturb — bounded random walk по всем полям снапшота.
func (s *Simulator) Perturb(in Snapshot) Snapshot {
	out := in
	out.Speed = s.rnd.Intn(121)                                           // 0..120
	out.BatteryLevel = clampInt(in.BatteryLevel+s.rnd.Intn(11)-5, 5, 100) // ±5
	out.EngineTemp = 80 + s.rnd.Intn(16)                                  // 80..95

	out.TirePressure = TirePressure{
		FrontLeft:  s.tire(),
		FrontRight: s.tire(),
		RearLeft:   s.tire(),
		RearRight:  s.tire(),
	}

	out.Location.Latitude = in.Location.Latitude + s.rnd.Float64()*0.1 - 0.05
	out.Location.Longitude = in.Location.Longitude + s.rnd.Float64()*0.1 - 0.05

	out.Maintenance.BatteryHealth = walkPercent(in.Maintenance.BatteryHealth, s.rnd, 70, 100)
	out.Maintenance.BrakePadWear = walkPercent(in.Maintenance.BrakePadWear, s.rnd, 60, 100)
	return out
}

// tire — давление 30.0..36.0 с шагом 0.1.
func (s *Simulator) tire() float64 {
	return math.Round((30+s.rnd.Float64()*6)*10) / 10
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// walkPercent двигает строку вида "95%" на ±1 с клампом.
func walkPercent(s string, rnd *rand.Rand, lo, hi int) string {
	v, err := strconv.Atoi(strings.TrimSuffix(s, "%"))
	if err != nil {
		v = hi
	}
	v = clampInt(v+rnd.Intn(3)-1, lo, hi)
	return strconv.Itoa(v) + "%"
}
