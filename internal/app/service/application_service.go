package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/repository"
	apperrors "github.com/odvhub/odvhub-backend/internal/errors"
	"github.com/odvhub/odvhub-backend/pkg/captcha"
	"github.com/odvhub/odvhub-backend/pkg/logger"
	"github.com/odvhub/odvhub-backend/pkg/mailer"
	"github.com/odvhub/odvhub-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrAlreadyProcessed     = errors.New("application already processed")
	ErrCannotDeleteApproved = errors.New("cannot delete an approved application")
	ErrCaptchaFailed        = errors.New("captcha verification failed")
)

const (
	// Attempts against the unique code index before giving up. With 24 bits
	// of entropy per code a second collision in a row is already unlikely.
	codeAttempts = 5

	// Attempts for the approval transaction when two approvals of different
	// applications race on the same registration number.
	approveAttempts = 3
)

// SubmitInput is a submission as received by the public endpoint.
type SubmitInput struct {
	Type         model.ApplicationType
	Payload      model.ApplicationPayload
	CaptchaToken string
	RemoteIP     string
}

// ApplicationService owns the application lifecycle: validated submission,
// review transitions with at-most-once member creation, and deletion.
type ApplicationService interface {
	// Submit validates the payload and persists a pending application.
	// A non-empty reasons slice means validation failed and nothing was
	// persisted.
	Submit(ctx context.Context, input SubmitInput) (*model.Application, []string, error)
	GetByID(id uint) (*model.Application, error)
	GetByCode(code string) (*model.Application, error)
	List(status model.ApplicationStatus, appType model.ApplicationType) ([]model.Application, error)
	// Approve transitions a pending application to approved and provisions
	// the member record in the same transaction. A second approve of the
	// same application returns ErrAlreadyProcessed and creates nothing.
	Approve(ctx context.Context, id, reviewerID uint) (*model.Application, *model.Member, error)
	Reject(ctx context.Context, id, reviewerID uint, reason string) (*model.Application, error)
	Delete(ctx context.Context, id uint) error
	RegeneratePDF(ctx context.Context, id uint) (*model.Application, error)
}

type applicationService struct {
	db            *gorm.DB
	appRepo       repository.ApplicationRepository
	validator     ConsentValidator
	provisioning  ProvisioningService
	artifacts     ArtifactService
	notifications NotificationService
	captcha       captcha.Verifier
	mailer        mailer.Mailer
}

func NewApplicationService(
	db *gorm.DB,
	appRepo repository.ApplicationRepository,
	validator ConsentValidator,
	provisioning ProvisioningService,
	artifacts ArtifactService,
	notifications NotificationService,
	verifier captcha.Verifier,
	m mailer.Mailer,
) ApplicationService {
	return &applicationService{
		db:            db,
		appRepo:       appRepo,
		validator:     validator,
		provisioning:  provisioning,
		artifacts:     artifacts,
		notifications: notifications,
		captcha:       verifier,
		mailer:        m,
	}
}

func (s *applicationService) Submit(ctx context.Context, input SubmitInput) (*model.Application, []string, error) {
	logger.Info("Processing application submission", map[string]interface{}{
		"type":  input.Type,
		"email": input.Payload.Email,
	})

	if input.Type != model.ApplicationTypeAdult && input.Type != model.ApplicationTypeJunior {
		return nil, []string{"applicant type must be adult or junior"}, nil
	}

	// Captcha runs before any business logic; a failed challenge is refused
	// outright rather than reported as a fixable form problem.
	ok, err := s.captcha.Verify(ctx, input.CaptchaToken, input.RemoteIP)
	if err != nil {
		logger.Error("Captcha verification errored", err, map[string]interface{}{
			"remote_ip": input.RemoteIP,
		})
		return nil, nil, ErrCaptchaFailed
	}
	if !ok {
		logger.Warn("Captcha verification failed", map[string]interface{}{
			"remote_ip": input.RemoteIP,
		})
		return nil, nil, ErrCaptchaFailed
	}

	if reasons := s.validator.Validate(input.Type, &input.Payload); len(reasons) > 0 {
		logger.Info("Application submission rejected by validation", map[string]interface{}{
			"type":    input.Type,
			"reasons": len(reasons),
		})
		return nil, reasons, nil
	}

	raw, err := json.Marshal(input.Payload)
	if err != nil {
		return nil, nil, err
	}

	app, err := s.persistWithFreshCode(input.Type, string(raw), &input.Payload)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Application submitted", map[string]interface{}{
		"application_id": app.ID,
		"code":           app.Code,
		"type":           app.Type,
	})

	// Everything past the insert is best effort: the applicant already holds
	// a fully persisted application and its code.
	s.notifications.NotifySubmitted(app)
	if _, err := s.artifacts.Generate(ctx, app); err != nil {
		logger.Warn("Application document generation failed at submission", map[string]interface{}{
			"application_id": app.ID,
			"error":          err.Error(),
		})
	}

	return app, nil, nil
}

func (s *applicationService) persistWithFreshCode(appType model.ApplicationType, raw string, payload *model.ApplicationPayload) (*model.Application, error) {
	var lastErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := util.GenerateApplicationCode()
		if err != nil {
			return nil, err
		}

		app := &model.Application{
			Code:        code,
			Type:        appType,
			Status:      model.ApplicationStatusPending,
			Payload:     raw,
			FirstName:   payload.FirstName,
			LastName:    payload.LastName,
			Email:       payload.Email,
			SubmittedAt: time.Now(),
		}

		err = s.appRepo.Create(app)
		if err == nil {
			return app, nil
		}
		if !apperrors.IsDuplicateKey(err) {
			return nil, err
		}

		lastErr = err
		logger.Warn("Application code collided, regenerating", map[string]interface{}{
			"code":    app.Code,
			"attempt": attempt + 1,
		})
	}
	return nil, lastErr
}

func (s *applicationService) GetByID(id uint) (*model.Application, error) {
	app, err := s.appRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplicationNotFound
	}
	return app, err
}

func (s *applicationService) GetByCode(code string) (*model.Application, error) {
	app, err := s.appRepo.FindByCode(code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplicationNotFound
	}
	return app, err
}

func (s *applicationService) List(status model.ApplicationStatus, appType model.ApplicationType) ([]model.Application, error) {
	return s.appRepo.List(status, appType)
}

func (s *applicationService) Approve(ctx context.Context, id, reviewerID uint) (*model.Application, *model.Member, error) {
	logger.Info("Approving application", map[string]interface{}{
		"application_id": id,
		"reviewer_id":    reviewerID,
	})

	app, err := s.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if app.Status != model.ApplicationStatusPending {
		return nil, nil, ErrAlreadyProcessed
	}

	payload, err := app.DecodePayload()
	if err != nil {
		logger.Error("Failed to decode application payload", err, map[string]interface{}{
			"application_id": id,
		})
		return nil, nil, err
	}

	var member *model.Member
	var lastErr error
	for attempt := 0; attempt < approveAttempts; attempt++ {
		member = nil
		err = s.db.Transaction(func(tx *gorm.DB) error {
			transitioned, err := s.appRepo.TransitionFromPending(tx, id, model.ApplicationStatusApproved, reviewerID, "")
			if err != nil {
				return err
			}
			if !transitioned {
				return ErrAlreadyProcessed
			}

			member, err = s.provisioning.Provision(tx, app, payload)
			return err
		})
		if err == nil {
			break
		}
		if errors.Is(err, ErrAlreadyProcessed) {
			return nil, nil, ErrAlreadyProcessed
		}
		if !apperrors.IsDuplicateKey(err) {
			return nil, nil, err
		}

		// Two approvals read the same max registration number; rerun the
		// whole transaction so max+1 is recomputed.
		lastErr = err
		logger.Warn("Registration number collided, retrying approval transaction", map[string]interface{}{
			"application_id": id,
			"attempt":        attempt + 1,
		})
	}
	if member == nil {
		return nil, nil, lastErr
	}

	app, err = s.GetByID(id)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Application approved", map[string]interface{}{
		"application_id":      id,
		"member_id":           member.ID,
		"registration_number": member.RegistrationNumber,
		"reviewer_id":         reviewerID,
	})

	s.notifications.NotifyReviewed(app)
	s.mailDecision(app, member, "")

	return app, member, nil
}

func (s *applicationService) Reject(ctx context.Context, id, reviewerID uint, reason string) (*model.Application, error) {
	logger.Info("Rejecting application", map[string]interface{}{
		"application_id": id,
		"reviewer_id":    reviewerID,
	})

	app, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if app.Status != model.ApplicationStatusPending {
		return nil, ErrAlreadyProcessed
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		transitioned, err := s.appRepo.TransitionFromPending(tx, id, model.ApplicationStatusRejected, reviewerID, reason)
		if err != nil {
			return err
		}
		if !transitioned {
			return ErrAlreadyProcessed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	app, err = s.GetByID(id)
	if err != nil {
		return nil, err
	}

	logger.Info("Application rejected", map[string]interface{}{
		"application_id": id,
		"reviewer_id":    reviewerID,
	})

	s.notifications.NotifyReviewed(app)
	s.mailDecision(app, nil, reason)

	return app, nil
}

func (s *applicationService) Delete(ctx context.Context, id uint) error {
	logger.Info("Deleting application", map[string]interface{}{
		"application_id": id,
	})

	app, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if app.Status == model.ApplicationStatusApproved {
		return ErrCannotDeleteApproved
	}

	// The conditional delete is the real guard; the status check above only
	// exists for a friendlier fast path. An approval committing between the
	// read and the delete makes the statement match nothing.
	var deleted bool
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		deleted, txErr = s.appRepo.DeleteIfNotApproved(tx, id)
		return txErr
	})
	if err != nil {
		return err
	}
	if !deleted {
		if _, err := s.GetByID(id); err != nil {
			return err
		}
		return ErrCannotDeleteApproved
	}

	// The row is gone; a leftover object in storage is only wasted space.
	if err := s.artifacts.Remove(ctx, app); err != nil {
		logger.Warn("Application deleted but its document could not be removed", map[string]interface{}{
			"application_id": id,
			"key":            app.PDFFile,
		})
	}

	logger.Info("Application deleted", map[string]interface{}{
		"application_id": id,
		"code":           app.Code,
	})
	return nil
}

func (s *applicationService) RegeneratePDF(ctx context.Context, id uint) (*model.Application, error) {
	app, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.artifacts.Generate(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// mailDecision tells the applicant the outcome of the review. Like every
// outbound mail this is best effort.
func (s *applicationService) mailDecision(app *model.Application, member *model.Member, reason string) {
	var subject, body string
	if app.Status == model.ApplicationStatusApproved {
		subject = fmt.Sprintf("Membership application %s approved", app.Code)
		body = fmt.Sprintf(
			"<p>Dear %s %s,</p>"+
				"<p>your membership application has been approved. "+
				"Your registration number is <strong>%d</strong>. Welcome aboard!</p>",
			app.FirstName, app.LastName, member.RegistrationNumber,
		)
	} else {
		subject = fmt.Sprintf("Membership application %s", app.Code)
		body = fmt.Sprintf(
			"<p>Dear %s %s,</p>"+
				"<p>unfortunately your membership application was not accepted.</p>",
			app.FirstName, app.LastName,
		)
		if reason != "" {
			body += fmt.Sprintf("<p>Reason: %s</p>", reason)
		}
	}

	if err := s.mailer.Send([]string{app.Email}, subject, body); err != nil {
		logger.Warn("Failed to email review decision to applicant", map[string]interface{}{
			"application_id": app.ID,
			"error":          err.Error(),
		})
	}
}
