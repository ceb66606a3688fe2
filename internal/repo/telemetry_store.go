package repo

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"torq/internal/models"
	"torq/internal/telemetry"
)

// TelemetryStore — gorm-реализация telemetry.Store. Снапшот лежит в одной
// JSON-колонке, UPDATE строки атомарен — читатель не увидит смесь старых
// и новых показаний.
type TelemetryStore struct{ db *gorm.DB }

func NewTelemetryStore(db *gorm.DB) *TelemetryStore { return &TelemetryStore{db: db} }

var _ telemetry.Store = (*TelemetryStore)(nil)

func (s *TelemetryStore) Get(ctx context.Context, clientID string) (telemetry.Snapshot, error) {
	var rec models.TelemetryRecord
	err := s.db.WithContext(ctx).Where("client_id = ?", clientID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return telemetry.Snapshot{}, telemetry.ErrNoData
	}
	if err != nil {
		return telemetry.Snapshot{}, err
	}
	var snap telemetry.Snapshot
	if err := json.Unmarshal(rec.Data, &snap); err != nil {
		return telemetry.Snapshot{}, err
	}
	return snap, nil
}

func (s *TelemetryStore) Put(ctx context.Context, clientID string, snap telemetry.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.TelemetryRecord{}).
		Where("client_id = ?", clientID).
		Update("data", datatypes.JSON(raw))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.db.WithContext(ctx).Create(&models.TelemetryRecord{
			ClientID: clientID,
			Data:     datatypes.JSON(raw),
		}).Error
	}
	return nil
}

func (s *TelemetryStore) List(ctx context.Context) (map[string]telemetry.Snapshot, error) {
	var recs []models.TelemetryRecord
	if err := s.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make(map[string]telemetry.Snapshot, len(recs))
	for _, rec := range recs {
		var snap telemetry.Snapshot
		if err := json.Unmarshal(rec.Data, &snap); err != nil {
			return nil, err
		}
		out[rec.ClientID] = snap
	}
	return out, nil
}
