package models

import (
	"encoding/json"
	"time"
)

type NotificationKind string

const (
	NotificationRegistration NotificationKind = "registration"
	NotificationScore        NotificationKind = "score"
	NotificationAchievement  NotificationKind = "achievement"
	NotificationSystem       NotificationKind = "system"
)

type Notification struct {
	ID        int              `json:"id" db:"id"`
	UserID    int              `json:"user_id" db:"user_id"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	Payload   json.RawMessage  `json:"payload,omitempty" db:"payload"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
