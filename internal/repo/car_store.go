package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"torq/internal/models"
	"torq/internal/secrets"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

type CarStore struct{ db *gorm.DB }

func NewCarStore(db *gorm.DB) *CarStore { return &CarStore{db: db} }

func (s *CarStore) GetByClientID(ctx context.Context, clientID string) (*models.Car, error) {
	var c models.Car
	err := s.db.WithContext(ctx).Where(&models.Car{ClientID: clientID}, "client_id").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// VerifyCredentials — единственная точка проверки секрета. Сравнение
// с постоянным временем; на неизвестный client_id прогоняем сравнение
// с пустым эталоном, чтобы поведение было одинаковым в обоих случаях.
func (s *CarStore) VerifyCredentials(ctx context.Context, clientID, clientSecret string) (*models.Car, error) {
	c, err := s.GetByClientID(ctx, clientID)
	if errors.Is(err, ErrNotFound) {
		secrets.VerifySecret("", clientSecret)
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !secrets.VerifySecret(c.ClientSecret, clientSecret) {
		return nil, ErrUnauthorized
	}
	return c, nil
}

func (s *CarStore) TouchAuthorized(ctx context.Context, clientID string) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&models.Car{}).
		Where("client_id = ?", clientID).
		Update("last_authorized", now).Error
}

func (s *CarStore) Create(ctx context.Context, c *models.Car) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *CarStore) List(ctx context.Context) ([]models.Car, error) {
	var out []models.Car
	err := s.db.WithContext(ctx).Find(&out).Error
	return out, err
}
