package entity

import "time"

// Tipos de notificación.
const (
	NotifyNewRequest = "new_request"
	NotifyApproved   = "approved"
	NotifyDenied     = "denied"
)

// NotificationField par nombre/valor de una notificación.
type NotificationField struct {
	Name   string
	Value  string
	Inline bool
}

// Notification mensaje a enviar por webhook.
type Notification struct {
	Kind      string
	Title     string
	Fields    []NotificationField
	Timestamp time.Time
	Color     int
}
