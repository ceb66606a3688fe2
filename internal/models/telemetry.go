package models

import (
	"time"

	"gorm.io/datatypes"
)

// TelemetryRecord — снапшот телеметрии одной машины. Снапшот целиком лежит
// в одной JSON-колонке: обновление строки атомарно, читатель не увидит
// наполовину перезаписанные показания.
type TelemetryRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID string         `gorm:"uniqueIndex;size:100;not null" json:"client_id"`
	Data     datatypes.JSON `json:"data"`
}
