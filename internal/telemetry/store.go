package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrNoData = errors.New("no telemetry for this client")

type TirePressure struct {
	FrontLeft  float64 `json:"front_left"`
	FrontRight float64 `json:"front_right"`
	RearLeft   float64 `json:"rear_left"`
	RearRight  float64 `json:"rear_right"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Maintenance struct {
	NextService   string `json:"next_service"`
	BatteryHealth string `json:"battery_health"` // "95%"
	BrakePadWear  string `json:"brake_pad_wear"` // "85%"
}

// Snapshot — показания одной машины. Значимый тип: Get/Put всегда работают
// с целой копией, частично обновлённый снапшот наружу не утекает.
type Snapshot struct {
	VehicleType  string       `json:"vehicle_type"`
	Speed        int          `json:"speed"`
	BatteryLevel int          `json:"battery_level"`
	EngineTemp   int          `json:"engine_temp"`
	TirePressure TirePressure `json:"tire_pressure"`
	Location     Location     `json:"location"`
	Maintenance  Maintenance  `json:"maintenance"`
}

// Store — единственный писатель это симулятор, обработчики только читают.
type Store interface {
	Get(ctx context.Context, clientID string) (Snapshot, error)
	Put(ctx context.Context, clientID string, s Snapshot) error
	List(ctx context.Context) (map[string]Snapshot, error)
}

type memStore struct {
	mu   sync.RWMutex
	data map[string]Snapshot
}

func NewMemStore() Store {
	return &memStore{data: make(map[string]Snapshot)}
}

func (m *memStore) Get(_ context.Context, clientID string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.data[clientID]
	if !ok {
		return Snapshot{}, ErrNoData
	}
	return s, nil
}

func (m *memStore) Put(_ context.Context, clientID string, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[clientID] = s
	return nil
}

func (m *memStore) List(_ context.Context) (map[string]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Snapshot, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

// SeedSnapshot — стартовые показания для машины. idx вносит разброс между
// машинами, чтобы флот не выглядел клонами до первого тика симулятора.
func SeedSnapshot(model string, year, idx int) Snapshot {
	return Snapshot{
		VehicleType:  fmt.Sprintf("%s %d", model, year),
		Speed:        50 + (idx*2)%30,
		BatteryLevel: 60 + (idx*5)%40,
		EngineTemp:   85 + (idx*2)%10,
		TirePressure: TirePressure{
			FrontLeft:  float64(32 + idx%4),
			FrontRight: float64(32 + idx%4),
			RearLeft:   float64(32 + idx%4),
			RearRight:  float64(32 + idx%4),
		},
		Location: Location{
			Latitude:  35.0 + float64((idx*25)%300)/10,
			Longitude: -115.0 + float64((idx*50)%700)/10,
		},
		Maintenance: Maintenance{
			NextService:   fmt.Sprintf("2025-%02d-%02d", (idx%12)+1, (idx%28)+1),
			BatteryHealth: fmt.Sprintf("%d%%", 90+(idx*2)%10),
			BrakePadWear:  fmt.Sprintf("%d%%", 85+(idx*3)%15),
		},
	}
}
