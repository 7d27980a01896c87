package application

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"passport-apply/apperror"
	appmodel "passport-apply/models/application"
)

// GormStore persists applications through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a gorm-backed application store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, id uint) (*appmodel.Application, error) {
	var app appmodel.Application
	err := s.db.WithContext(ctx).Preload("SubmittedBy").First(&app, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "Application not found")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "failed to load application", err)
	}
	return &app, nil
}

func (s *GormStore) Save(ctx context.Context, app *appmodel.Application) (*appmodel.Application, error) {
	if err := s.db.WithContext(ctx).Save(app).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to save application", err)
	}
	return app, nil
}

func (s *GormStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&appmodel.Application{}, id)
	if result.Error != nil {
		return apperror.Wrap(apperror.KindInternal, "failed to delete application", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.New(apperror.KindNotFound, "Application not found")
	}
	return nil
}

func (s *GormStore) List(ctx context.Context) ([]appmodel.Application, error) {
	var apps []appmodel.Application
	if err := s.db.WithContext(ctx).Preload("SubmittedBy").Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to list applications", err)
	}
	return apps, nil
}

func (s *GormStore) ListByUser(ctx context.Context, userID uint) ([]appmodel.Application, error) {
	var apps []appmodel.Application
	err := s.db.WithContext(ctx).
		Where("submitted_by_id = ?", userID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to list applications by user", err)
	}
	return apps, nil
}
