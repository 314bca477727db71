package model

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeApplicationSubmitted NotificationType = "application_submitted"
	NotificationTypeApplicationApproved  NotificationType = "application_approved"
	NotificationTypeApplicationRejected  NotificationType = "application_rejected"
)

// Notification is an in-app message for a staff account, created when the
// review queue changes.
type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint  `gorm:"not null;index" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Type NotificationType `gorm:"type:varchar(50);not null;index" json:"type"`

	Title   string `gorm:"type:text;not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`

	IsRead bool `gorm:"default:false;index" json:"is_read"`

	ApplicationID *uint `gorm:"index" json:"application_id,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
