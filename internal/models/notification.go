package models

import (
	"time"

	"github.com/lib/pq"
)

// NotificationAudience selects who receives a notification.
type NotificationAudience string

const (
	AudienceAll      NotificationAudience = "all"
	AudienceFaculty  NotificationAudience = "faculty"
	AudienceStudents NotificationAudience = "students"
	AudienceSpecific NotificationAudience = "specific"
)

// Notification is an announcement published by an administrator. Read is
// resolved per recipient.
type Notification struct {
	ID           string               `db:"id" json:"id"`
	Title        string               `db:"title" json:"title"`
	Message      string               `db:"message" json:"message"`
	Audience     NotificationAudience `db:"audience" json:"audience"`
	RecipientIDs pq.StringArray       `db:"recipient_ids" json:"recipient_ids,omitempty"`
	CreatedBy    string               `db:"created_by" json:"created_by"`
	CreatedAt    time.Time            `db:"created_at" json:"created_at"`
	Read         bool                 `db:"read" json:"read"`
}

// AudienceFor maps a role to the broadcast audience it belongs to.
func AudienceFor(role UserRole) NotificationAudience {
	switch role {
	case RoleFaculty:
		return AudienceFaculty
	case RoleStudent:
		return AudienceStudents
	default:
		return ""
	}
}
