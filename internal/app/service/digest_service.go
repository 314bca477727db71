package service

import (
	"fmt"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/repository"
	"github.com/odvhub/odvhub-backend/pkg/logger"
	"github.com/odvhub/odvhub-backend/pkg/mailer"
)

// DigestService mails reviewers a summary of the pending review queue. It is
// read-only: a digest run never touches application state.
type DigestService interface {
	SendPendingDigest() error
}

type digestService struct {
	appRepo  repository.ApplicationRepository
	userRepo repository.UserRepository
	mailer   mailer.Mailer
}

func NewDigestService(
	appRepo repository.ApplicationRepository,
	userRepo repository.UserRepository,
	m mailer.Mailer,
) DigestService {
	return &digestService{
		appRepo:  appRepo,
		userRepo: userRepo,
		mailer:   m,
	}
}

func (s *digestService) SendPendingDigest() error {
	count, err := s.appRepo.CountByStatus(model.ApplicationStatusPending)
	if err != nil {
		return err
	}
	if count == 0 {
		logger.Debug("No pending applications, skipping digest", nil)
		return nil
	}

	recipients, err := s.userRepo.FindByRoles(model.RoleAdmin, model.RoleReviewer)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		logger.Warn("Pending applications but no reviewer accounts to notify", map[string]interface{}{
			"pending": count,
		})
		return nil
	}

	addresses := make([]string, 0, len(recipients))
	for _, user := range recipients {
		addresses = append(addresses, user.Email)
	}

	subject := fmt.Sprintf("%d membership application(s) awaiting review", count)
	body := fmt.Sprintf(
		"<p>There are currently <strong>%d</strong> membership application(s) in the review queue.</p>"+
			"<p>Please log in to the back office to process them.</p>",
		count,
	)

	if err := s.mailer.Send(addresses, subject, body); err != nil {
		logger.Error("Failed to send pending queue digest", err, map[string]interface{}{
			"pending":    count,
			"recipients": len(addresses),
		})
		return err
	}

	logger.Info("Pending queue digest sent", map[string]interface{}{
		"pending":    count,
		"recipients": len(addresses),
	})
	return nil
}
