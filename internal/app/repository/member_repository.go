package repository

import (
	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/pkg/logger"
	"gorm.io/gorm"
)

type MemberRepository interface {
	// Create persists a member and its child rows inside the caller's
	// transaction; identity provisioning runs it as part of the approval
	// transaction.
	Create(tx *gorm.DB, member *model.Member) error
	FindByID(id uint) (*model.Member, error)
	FindByApplicationID(applicationID uint) (*model.Member, error)
	List() ([]model.Member, error)
	// NextRegistrationNumber returns max+1 over all registration numbers
	// ever assigned, soft-deleted members included, so numbers are never
	// reused.
	NextRegistrationNumber(tx *gorm.DB) (int, error)
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(tx *gorm.DB, member *model.Member) error {
	logger.Debug("Creating member in database", map[string]interface{}{
		"registration_number": member.RegistrationNumber,
		"application_id":      member.ApplicationID,
		"type":                member.Type,
	})

	if err := tx.Create(member).Error; err != nil {
		logger.Error("Failed to create member in database", err, map[string]interface{}{
			"registration_number": member.RegistrationNumber,
			"application_id":      member.ApplicationID,
		})
		return err
	}

	logger.Debug("Member created in database", map[string]interface{}{
		"member_id":           member.ID,
		"registration_number": member.RegistrationNumber,
	})
	return nil
}

func (r *memberRepository) FindByID(id uint) (*model.Member, error) {
	var member model.Member
	if err := r.db.Preload("Licenses").Preload("Courses").Preload("Guardians").
		First(&member, id).Error; err != nil {
		logger.Error("Failed to find member by ID in database", err, map[string]interface{}{
			"member_id": id,
		})
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindByApplicationID(applicationID uint) (*model.Member, error) {
	var member model.Member
	if err := r.db.Preload("Licenses").Preload("Courses").Preload("Guardians").
		Where("application_id = ?", applicationID).First(&member).Error; err != nil {
		logger.Error("Failed to find member by application ID in database", err, map[string]interface{}{
			"application_id": applicationID,
		})
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) List() ([]model.Member, error) {
	var members []model.Member
	if err := r.db.Preload("Guardians").
		Order("registration_number ASC").Find(&members).Error; err != nil {
		logger.Error("Failed to list members in database", err, nil)
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) NextRegistrationNumber(tx *gorm.DB) (int, error) {
	var max int
	err := tx.Unscoped().Model(&model.Member{}).
		Select("COALESCE(MAX(registration_number), 0)").
		Scan(&max).Error
	if err != nil {
		logger.Error("Failed to read max registration number", err, nil)
		return 0, err
	}
	return max + 1, nil
}
