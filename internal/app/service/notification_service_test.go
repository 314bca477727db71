package service

import (
	"testing"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/repository"
	"github.com/odvhub/odvhub-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupNotificationServiceTest(t *testing.T) (NotificationService, *gorm.DB, *model.User, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	notificationRepo := repository.NewNotificationRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	notificationService := NewNotificationService(notificationRepo, userRepo, nil)

	admin := &model.User{Email: "admin@example.com", PasswordHash: "h", Name: "Admin", Role: model.RoleAdmin}
	viewer := &model.User{Email: "viewer@example.com", PasswordHash: "h", Name: "Viewer", Role: model.RoleViewer}
	testDB.Create(admin)
	testDB.Create(viewer)

	return notificationService, testDB, admin, viewer
}

func TestNotificationService_NotifySubmitted_ReachesReviewersOnly(t *testing.T) {
	notificationService, testDB, admin, viewer := setupNotificationServiceTest(t)

	app := &model.Application{
		ID:        1,
		Code:      "DOM-2026-AAAAAA",
		Type:      model.ApplicationTypeAdult,
		Status:    model.ApplicationStatusPending,
		FirstName: "Mario",
		LastName:  "Rossi",
	}
	notificationService.NotifySubmitted(app)

	var forAdmin, forViewer int64
	testDB.Model(&model.Notification{}).Where("user_id = ?", admin.ID).Count(&forAdmin)
	testDB.Model(&model.Notification{}).Where("user_id = ?", viewer.ID).Count(&forViewer)

	assert.Equal(t, int64(1), forAdmin)
	assert.Zero(t, forViewer)
}

func TestNotificationService_UnreadAndMarkAsRead(t *testing.T) {
	notificationService, testDB, admin, _ := setupNotificationServiceTest(t)

	app := &model.Application{ID: 1, Code: "DOM-2026-BBBBBB", Status: model.ApplicationStatusApproved}
	notificationService.NotifyReviewed(app)

	count, err := notificationService.GetUnreadCount(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var notification model.Notification
	require.NoError(t, testDB.Where("user_id = ?", admin.ID).First(&notification).Error)
	assert.Equal(t, model.NotificationTypeApplicationApproved, notification.Type)

	require.NoError(t, notificationService.MarkAsRead(notification.ID, admin.ID))

	count, err = notificationService.GetUnreadCount(admin.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationService_MarkAsRead_WrongUser(t *testing.T) {
	notificationService, testDB, admin, viewer := setupNotificationServiceTest(t)

	app := &model.Application{ID: 1, Code: "DOM-2026-CCCCCC", Status: model.ApplicationStatusRejected}
	notificationService.NotifyReviewed(app)

	var notification model.Notification
	require.NoError(t, testDB.Where("user_id = ?", admin.ID).First(&notification).Error)

	err := notificationService.MarkAsRead(notification.ID, viewer.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}
