package repository

import (
	"time"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/pkg/logger"
	"gorm.io/gorm"
)

type ApplicationRepository interface {
	Create(app *model.Application) error
	FindByID(id uint) (*model.Application, error)
	FindByCode(code string) (*model.Application, error)
	List(status model.ApplicationStatus, appType model.ApplicationType) ([]model.Application, error)
	UpdatePDFFile(id uint, key string) error
	// TransitionFromPending performs the atomic check-and-set that moves an
	// application out of pending. It reports whether a row was actually
	// transitioned; false means the application was no longer pending.
	TransitionFromPending(tx *gorm.DB, id uint, to model.ApplicationStatus, reviewerID uint, reason string) (bool, error)
	// DeleteIfNotApproved removes the application unless it is approved,
	// in one conditional statement. It reports whether a row was removed;
	// false means the row is gone or was approved in the meantime.
	DeleteIfNotApproved(tx *gorm.DB, id uint) (bool, error)
	CountByStatus(status model.ApplicationStatus) (int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(app *model.Application) error {
	logger.Debug("Creating application in database", map[string]interface{}{
		"code": app.Code,
		"type": app.Type,
	})

	if err := r.db.Create(app).Error; err != nil {
		logger.Error("Failed to create application in database", err, map[string]interface{}{
			"code": app.Code,
			"type": app.Type,
		})
		return err
	}

	logger.Debug("Application created in database", map[string]interface{}{
		"application_id": app.ID,
		"code":           app.Code,
	})
	return nil
}

func (r *applicationRepository) FindByID(id uint) (*model.Application, error) {
	logger.Debug("Finding application by ID in database", map[string]interface{}{
		"application_id": id,
	})

	var app model.Application
	if err := r.db.Preload("Reviewer").First(&app, id).Error; err != nil {
		logger.Error("Failed to find application by ID in database", err, map[string]interface{}{
			"application_id": id,
		})
		return nil, err
	}

	return &app, nil
}

func (r *applicationRepository) FindByCode(code string) (*model.Application, error) {
	logger.Debug("Finding application by code in database", map[string]interface{}{
		"code": code,
	})

	var app model.Application
	if err := r.db.Where("code = ?", code).First(&app).Error; err != nil {
		logger.Error("Failed to find application by code in database", err, map[string]interface{}{
			"code": code,
		})
		return nil, err
	}

	return &app, nil
}

func (r *applicationRepository) List(status model.ApplicationStatus, appType model.ApplicationType) ([]model.Application, error) {
	logger.Debug("Listing applications in database", map[string]interface{}{
		"status": status,
		"type":   appType,
	})

	query := r.db.Model(&model.Application{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if appType != "" {
		query = query.Where("type = ?", appType)
	}

	var apps []model.Application
	if err := query.Order("submitted_at DESC").Find(&apps).Error; err != nil {
		logger.Error("Failed to list applications in database", err, map[string]interface{}{
			"status": status,
			"type":   appType,
		})
		return nil, err
	}

	logger.Debug("Applications listed in database", map[string]interface{}{
		"count": len(apps),
	})
	return apps, nil
}

func (r *applicationRepository) UpdatePDFFile(id uint, key string) error {
	logger.Debug("Updating application artifact reference in database", map[string]interface{}{
		"application_id": id,
		"pdf_file":       key,
	})

	if err := r.db.Model(&model.Application{}).Where("id = ?", id).
		Update("pdf_file", key).Error; err != nil {
		logger.Error("Failed to update application artifact reference", err, map[string]interface{}{
			"application_id": id,
		})
		return err
	}

	return nil
}

func (r *applicationRepository) TransitionFromPending(tx *gorm.DB, id uint, to model.ApplicationStatus, reviewerID uint, reason string) (bool, error) {
	logger.Debug("Transitioning application status in database", map[string]interface{}{
		"application_id": id,
		"to":             to,
		"reviewer_id":    reviewerID,
	})

	now := time.Now()
	updates := map[string]interface{}{
		"status":      to,
		"reviewed_by": reviewerID,
		"reviewed_at": now,
	}
	if to == model.ApplicationStatusRejected && reason != "" {
		updates["rejection_reason"] = reason
	}

	// The predicate on status is what makes two concurrent reviews of the
	// same application resolve to one winner.
	result := tx.Model(&model.Application{}).
		Where("id = ? AND status = ?", id, model.ApplicationStatusPending).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to transition application status", result.Error, map[string]interface{}{
			"application_id": id,
			"to":             to,
		})
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		logger.Debug("Application status transition matched no pending row", map[string]interface{}{
			"application_id": id,
			"to":             to,
		})
		return false, nil
	}

	return true, nil
}

func (r *applicationRepository) DeleteIfNotApproved(tx *gorm.DB, id uint) (bool, error) {
	logger.Debug("Deleting application from database", map[string]interface{}{
		"application_id": id,
	})

	// The predicate keeps a concurrent approval from losing its application:
	// once the row is approved, no delete matches it.
	result := tx.Where("id = ? AND status <> ?", id, model.ApplicationStatusApproved).
		Delete(&model.Application{})
	if result.Error != nil {
		logger.Error("Failed to delete application from database", result.Error, map[string]interface{}{
			"application_id": id,
		})
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		logger.Debug("Application delete matched no deletable row", map[string]interface{}{
			"application_id": id,
		})
		return false, nil
	}

	return true, nil
}

func (r *applicationRepository) CountByStatus(status model.ApplicationStatus) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Application{}).Where("status = ?", status).Count(&count).Error; err != nil {
		logger.Error("Failed to count applications by status", err, map[string]interface{}{
			"status": status,
		})
		return 0, err
	}
	return count, nil
}
