package service

import (
	"errors"
	"strings"
	"time"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/repository"
	"github.com/odvhub/odvhub-backend/pkg/logger"
	"github.com/odvhub/odvhub-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrPayloadIncomplete = errors.New("application payload is missing required fields")
)

// ProvisioningService converts an approved application into the canonical
// member record. Provision must run inside the approval transaction so that
// a failed member write rolls the status transition back with it.
type ProvisioningService interface {
	Provision(tx *gorm.DB, app *model.Application, payload *model.ApplicationPayload) (*model.Member, error)
}

type provisioningService struct {
	memberRepo repository.MemberRepository
}

func NewProvisioningService(memberRepo repository.MemberRepository) ProvisioningService {
	return &provisioningService{memberRepo: memberRepo}
}

func (s *provisioningService) Provision(tx *gorm.DB, app *model.Application, payload *model.ApplicationPayload) (*model.Member, error) {
	logger.Info("Provisioning member from application", map[string]interface{}{
		"application_id": app.ID,
		"code":           app.Code,
		"type":           app.Type,
	})

	// The payload was validated at submission time, but it may predate the
	// current schema; check the mapped fields again before writing anything.
	if err := s.revalidate(app, payload); err != nil {
		logger.Error("Application payload failed provisioning re-validation", err, map[string]interface{}{
			"application_id": app.ID,
		})
		return nil, err
	}

	next, err := s.memberRepo.NextRegistrationNumber(tx)
	if err != nil {
		return nil, err
	}

	member := &model.Member{
		RegistrationNumber: next,
		Type:               model.MemberType(app.Type),
		ApplicationID:      app.ID,
		FirstName:          payload.FirstName,
		LastName:           payload.LastName,
		TaxCode:            strings.ToUpper(strings.TrimSpace(payload.TaxCode)),
		BirthDate:          payload.BirthDate,
		BirthPlace:         payload.BirthPlace,
		Address:            payload.Address,
		City:               payload.City,
		PostalCode:         payload.PostalCode,
		Phone:              payload.Phone,
		Email:              payload.Email,
		JoinedAt:           time.Now(),
	}

	for _, l := range payload.Licenses {
		member.Licenses = append(member.Licenses, model.MemberLicense{
			Type:      l.Type,
			Number:    l.Number,
			IssuedAt:  l.IssuedAt,
			ExpiresAt: l.ExpiresAt,
		})
	}
	for _, c := range payload.Courses {
		member.Courses = append(member.Courses, model.MemberCourse{
			Name:     c.Name,
			Provider: c.Provider,
			Year:     c.Year,
		})
	}
	for _, g := range payload.Guardians {
		member.Guardians = append(member.Guardians, model.MemberGuardian{
			Type:      g.Type,
			FirstName: g.FirstName,
			LastName:  g.LastName,
			TaxCode:   strings.ToUpper(strings.TrimSpace(g.TaxCode)),
			Phone:     g.Phone,
			Email:     g.Email,
			Address:   g.Address,
		})
	}

	if err := s.memberRepo.Create(tx, member); err != nil {
		return nil, err
	}

	logger.Info("Member provisioned", map[string]interface{}{
		"member_id":           member.ID,
		"registration_number": member.RegistrationNumber,
		"application_id":      app.ID,
	})
	return member, nil
}

func (s *provisioningService) revalidate(app *model.Application, payload *model.ApplicationPayload) error {
	if strings.TrimSpace(payload.FirstName) == "" ||
		strings.TrimSpace(payload.LastName) == "" ||
		!util.ValidateTaxCode(payload.TaxCode) {
		return ErrPayloadIncomplete
	}
	if app.Type == model.ApplicationTypeJunior && len(payload.Guardians) == 0 {
		return ErrPayloadIncomplete
	}
	return nil
}
