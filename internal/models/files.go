package models

import "time"

// FileRecord — регистрация хэша файла в ledger: кто владеет, какая версия,
// какой digest и в какой транзакции записан. Заполняется административным
// путём (/admin/v1/files/register), на горячем пути только читается.
type FileRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OwnerAddress string `gorm:"index:idx_file_reg,unique;size:42;not null" json:"owner_address"`
	Filename     string `gorm:"index:idx_file_reg,unique;size:255;not null" json:"filename"`
	Version      uint   `gorm:"index:idx_file_reg,unique;not null" json:"version"`
	ClientID     string `gorm:"index;size:100" json:"client_id"`
	Digest       string `gorm:"size:70;not null" json:"digest"` // "0x" + sha3-256 hex
	TxHash       string `gorm:"size:66" json:"tx_hash"`
}

// UploadRecord — принадлежность загруженного телеметрией файла машине.
// Выдача файла проверяется по этой записи, не по имени на диске.
type UploadRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CarID    string `gorm:"index;size:100;not null" json:"car_id"`
	Filename string `gorm:"uniqueIndex;size:255;not null" json:"filename"`
}
