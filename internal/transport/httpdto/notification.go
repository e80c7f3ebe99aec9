package httpdto

import "time"

type NotificationView struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Read      bool           `json:"read"`
	Time      string         `json:"time"`
	CreatedAt time.Time      `json:"createdAt"`
}

// DispatchNotificationRequest targets one user, or every user when UserID is
// empty (admin broadcast).
type DispatchNotificationRequest struct {
	UserID  string         `json:"userId" binding:"omitempty,uuid"`
	Title   string         `json:"title" binding:"required"`
	Message string         `json:"message" binding:"required"`
	Type    string         `json:"type"`
	Data    map[string]any `json:"data"`
}

// MarkNotificationsReadRequest with no ids marks the whole feed read.
type MarkNotificationsReadRequest struct {
	IDs []string `json:"ids" binding:"omitempty,dive,uuid"`
}
