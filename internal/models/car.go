package models

import (
	"time"
)

// Car — учётная запись подключённого автомобиля. Запись создаётся
// административно; ядро мутирует только LastAuthorized.
type Car struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID        string     `gorm:"uniqueIndex;size:100;not null" json:"client_id"`
	ClientSecret    string     `gorm:"size:100;not null" json:"-"`
	VIN             string     `gorm:"uniqueIndex;size:17;not null" json:"vin"`
	Model           string     `gorm:"size:100" json:"model"`
	Year            int        `json:"year"`
	Scopes          string     `gorm:"size:1000" json:"scopes"`           // space-separated
	ScopeCategories string     `gorm:"size:500" json:"scope_categories"` // кэш категорий, заполняется при регистрации
	LastAuthorized  *time.Time `json:"last_authorized,omitempty"`
}

// AuthCode — короткоживущий одноразовый код авторизации.
// Переход used=false→true строго атомарный (см. repo.CodeStore.Consume).
type AuthCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Code      string    `gorm:"uniqueIndex;size:100;not null" json:"code"`
	ClientID  string    `gorm:"index;size:100;not null" json:"client_id"`
	VIN       string    `gorm:"size:17;not null" json:"vin"`
	Scope     string    `gorm:"size:500" json:"scope"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
}
