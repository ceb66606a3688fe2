package server

import (
	"context"
	"errors"
	"time"

	"torq/internal/authz"
	"torq/internal/models"
	"torq/internal/repo"
	"torq/internal/resource"
)

/* ───── gorm-хранилища → контракт issuer'а ───── */

type authzStoreAdapter struct {
	cars  *repo.CarStore
	codes *repo.CodeStore
}

func newAuthzStoreAdapter(cars *repo.CarStore, codes *repo.CodeStore) authz.Store {
	return &authzStoreAdapter{cars: cars, codes: codes}
}

func (a *authzStoreAdapter) VerifyCredentials(ctx context.Context, clientID, clientSecret string) (*authz.Credential, error) {
	car, err := a.cars.VerifyCredentials(ctx, clientID, clientSecret)
	if err != nil {
		if errors.Is(err, repo.ErrUnauthorized) {
			return nil, authz.ErrUnknownClient
		}
		return nil, err
	}
	return &authz.Credential{
		ClientID: car.ClientID,
		VIN:      car.VIN,
		Model:    car.Model,
		Year:     car.Year,
		Scopes:   car.Scopes,
	}, nil
}

func (a *authzStoreAdapter) SaveCode(ctx context.Context, c authz.Code) error {
	return a.codes.Create(ctx, &models.AuthCode{
		Code:      c.Code,
		ClientID:  c.ClientID,
		VIN:       c.VIN,
		Scope:     c.Scope,
		ExpiresAt: c.ExpiresAt,
		IPAddress: c.IPAddress,
	})
}

func (a *authzStoreAdapter) ConsumeCode(ctx context.Context, code, clientID string, now time.Time) (*authz.Code, error) {
	rec, err := a.codes.Consume(ctx, code, clientID, now)
	if err != nil {
		if errors.Is(err, repo.ErrCodeInvalid) {
			return nil, authz.ErrCodeInvalid
		}
		return nil, err
	}
	return &authz.Code{
		Code:      rec.Code,
		ClientID:  rec.ClientID,
		VIN:       rec.VIN,
		Scope:     rec.Scope,
		ExpiresAt: rec.ExpiresAt,
		IPAddress: rec.IPAddress,
	}, nil
}

func (a *authzStoreAdapter) TouchAuthorized(ctx context.Context, clientID string) error {
	return a.cars.TouchAuthorized(ctx, clientID)
}

/* ───── gorm-хранилища → контракты ресурсного контура ───── */

type carCredChecker struct{ cars *repo.CarStore }

func (c *carCredChecker) Check(ctx context.Context, carID, secret string) error {
	_, err := c.cars.VerifyCredentials(ctx, carID, secret)
	if errors.Is(err, repo.ErrUnauthorized) {
		return resource.ErrBadCredentials
	}
	return err
}

type uploadIndexAdapter struct{ files *repo.FileStore }

func (u *uploadIndexAdapter) Save(ctx context.Context, carID, filename string) error {
	return u.files.SaveUpload(ctx, carID, filename)
}

func (u *uploadIndexAdapter) Owned(ctx context.Context, carID, filename string) (bool, error) {
	return u.files.UploadOwned(ctx, carID, filename)
}

type registryAdapter struct{ files *repo.FileStore }

func (a *registryAdapter) SaveRegistration(ctx context.Context, rec resource.Registration) error {
	return a.files.SaveRegistration(ctx, &models.FileRecord{
		OwnerAddress: rec.OwnerAddress,
		ClientID:     rec.ClientID,
		Filename:     rec.Filename,
		Version:      rec.Version,
		Digest:       rec.Digest,
		TxHash:       rec.TxHash,
	})
}

/* ───── in-memory учётки → контракт ресурсного контура ───── */

type memCredChecker struct{ ms *authz.MemStore }

func (c *memCredChecker) Check(ctx context.Context, carID, secret string) error {
	_, err := c.ms.VerifyCredentials(ctx, carID, secret)
	if errors.Is(err, authz.ErrUnknownClient) {
		return resource.ErrBadCredentials
	}
	return err
}
