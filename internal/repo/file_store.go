package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"torq/internal/models"
)

type FileStore struct{ db *gorm.DB }

func NewFileStore(db *gorm.DB) *FileStore { return &FileStore{db: db} }

// SaveRegistration — upsert по (owner, filename, version): повторная
// регистрация той же версии перезаписывает digest и tx_hash.
func (s *FileStore) SaveRegistration(ctx context.Context, rec *models.FileRecord) error {
	var existing models.FileRecord
	err := s.db.WithContext(ctx).
		Where("owner_address = ? AND filename = ? AND version = ?", rec.OwnerAddress, rec.Filename, rec.Version).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.WithContext(ctx).Create(rec).Error
	}
	if err != nil {
		return err
	}
	existing.Digest = rec.Digest
	existing.TxHash = rec.TxHash
	existing.ClientID = rec.ClientID
	return s.db.WithContext(ctx).Save(&existing).Error
}

func (s *FileStore) GetRegistration(ctx context.Context, owner, filename string, version uint) (*models.FileRecord, error) {
	var rec models.FileRecord
	err := s.db.WithContext(ctx).
		Where("owner_address = ? AND filename = ? AND version = ?", owner, filename, version).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *FileStore) SaveUpload(ctx context.Context, carID, filename string) error {
	return s.db.WithContext(ctx).Create(&models.UploadRecord{CarID: carID, Filename: filename}).Error
}

// UploadOwned — файл отдаётся только машине, за которой он записан.
func (s *FileStore) UploadOwned(ctx context.Context, carID, filename string) (bool, error) {
	var rec models.UploadRecord
	err := s.db.WithContext(ctx).
		Where("car_id = ? AND filename = ?", carID, filename).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
