package service

import (
	"errors"
	"fmt"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/repository"
	ws "github.com/odvhub/odvhub-backend/internal/websocket"
	"github.com/odvhub/odvhub-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationService keeps staff informed of review-queue changes: one
// notification row per recipient plus a best-effort websocket broadcast.
// Nothing here may ever fail a submission or a review.
type NotificationService interface {
	NotifySubmitted(app *model.Application)
	NotifyReviewed(app *model.Application)
	GetUserNotifications(userID uint, limit, offset int) ([]model.Notification, int64, error)
	GetUnreadCount(userID uint) (int64, error)
	MarkAsRead(notificationID, userID uint) error
	MarkAllAsRead(userID uint) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	hub              *ws.Hub
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	hub *ws.Hub,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		hub:              hub,
	}
}

func (s *notificationService) NotifySubmitted(app *model.Application) {
	s.fanOut(
		model.NotificationTypeApplicationSubmitted,
		"New membership application",
		fmt.Sprintf("%s %s submitted a %s application (%s)", app.FirstName, app.LastName, app.Type, app.Code),
		app,
		"application_submitted",
	)
}

func (s *notificationService) NotifyReviewed(app *model.Application) {
	notifType := model.NotificationTypeApplicationApproved
	title := "Application approved"
	if app.Status == model.ApplicationStatusRejected {
		notifType = model.NotificationTypeApplicationRejected
		title = "Application rejected"
	}
	s.fanOut(
		notifType,
		title,
		fmt.Sprintf("Application %s of %s %s is now %s", app.Code, app.FirstName, app.LastName, app.Status),
		app,
		"application_reviewed",
	)
}

func (s *notificationService) fanOut(notifType model.NotificationType, title, content string, app *model.Application, eventType string) {
	recipients, err := s.userRepo.FindByRoles(model.RoleAdmin, model.RoleReviewer)
	if err != nil {
		logger.Error("Failed to load notification recipients", err, map[string]interface{}{
			"application_id": app.ID,
		})
	} else {
		notifications := make([]model.Notification, 0, len(recipients))
		applicationID := app.ID
		for _, user := range recipients {
			notifications = append(notifications, model.Notification{
				UserID:        user.ID,
				Type:          notifType,
				Title:         title,
				Content:       content,
				ApplicationID: &applicationID,
			})
		}
		if err := s.notificationRepo.CreateBatch(notifications); err != nil {
			logger.Error("Failed to persist staff notifications", err, map[string]interface{}{
				"application_id": app.ID,
				"type":           notifType,
			})
		}
	}

	if s.hub != nil {
		s.hub.Broadcast(ws.Event{
			Type:          eventType,
			ApplicationID: app.ID,
			Code:          app.Code,
			Status:        string(app.Status),
		})
	}
}

func (s *notificationService) GetUserNotifications(userID uint, limit, offset int) ([]model.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.notificationRepo.FindByUserID(userID, limit, offset)
}

func (s *notificationService) GetUnreadCount(userID uint) (int64, error) {
	return s.notificationRepo.GetUnreadCount(userID)
}

func (s *notificationService) MarkAsRead(notificationID, userID uint) error {
	err := s.notificationRepo.MarkAsRead(notificationID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *notificationService) MarkAllAsRead(userID uint) error {
	return s.notificationRepo.MarkAllAsRead(userID)
}
