package repositories

import (
	"context"

	"microloan/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// applicationRepository handles application data access
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create creates a new application
func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByApplicationID gets an application by its public id
func (r *applicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Update updates an application
func (r *applicationRepository) Update(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Save(app).Error
}

// Delete deletes an application
func (r *applicationRepository) Delete(ctx context.Context, applicationID string) error {
	return r.db.WithContext(ctx).Where("application_id = ?", applicationID).Delete(&models.Application{}).Error
}

// List lists applications newest first
func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter, offset, limit int) ([]*models.Application, int64, error) {
	var apps []*models.Application
	var total int64

	filtered := func(db *gorm.DB) *gorm.DB {
		if filter.Email != "" {
			db = db.Where("applications.email = ?", filter.Email)
		}
		if filter.Status != "" {
			db = db.Where("applications.status = ?", filter.Status)
		}
		if filter.OwnerEmail != "" {
			db = db.Where("applications.loan_id IN (?)", models.OwnedLoanIDs(r.db, filter.OwnerEmail))
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&models.Application{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Scopes(filtered).
		Order("applications.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error

	return apps, total, err
}
