package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"torq/internal/models"
)

var ErrCodeInvalid = errors.New("invalid or expired code")

type CodeStore struct{ db *gorm.DB }

func NewCodeStore(db *gorm.DB) *CodeStore { return &CodeStore{db: db} }

func (s *CodeStore) Create(ctx context.Context, c *models.AuthCode) error {
	return s.db.WithContext(ctx).Create(c).Error
}

// Consume — атомарное check-and-set: одним UPDATE помечаем код
// использованным только если он ещё не использован и не истёк.
// RowsAffected == 0 означает «кода нет / чужой / уже сожжён / истёк» —
// наружу это одна и та же ошибка. Гонка двух Exchange на одном коде
// решается на уровне БД: выигрывает ровно один.
func (s *CodeStore) Consume(ctx context.Context, code, clientID string, now time.Time) (*models.AuthCode, error) {
	res := s.db.WithContext(ctx).Model(&models.AuthCode{}).
		Where("code = ? AND client_id = ? AND used = ? AND expires_at > ?", code, clientID, false, now).
		Update("used", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCodeInvalid
	}

	var c models.AuthCode
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// PurgeExpired — обслуживание таблицы, на горячем пути не участвует.
func (s *CodeStore) PurgeExpired(ctx context.Context, olderThan time.Time) error {
	return s.db.WithContext(ctx).
		Where("expires_at < ?", olderThan).
		Delete(&models.AuthCode{}).Error
}
