package entities

import "time"

type NotificationType string

const (
	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
	NotifyError   NotificationType = "error"
	NotifyInfo    NotificationType = "info"
)

// Notification is a short-lived message for the operator.
type Notification struct {
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

// Icon mirrors the notification badge of the dashboard.
func (t NotificationType) Icon() string {
	switch t {
	case NotifySuccess:
		return "✅"
	case NotifyWarning:
		return "⚠️"
	case NotifyError:
		return "❌"
	default:
		return "ℹ️"
	}
}

type RecommendationType string

const (
	RecommendWarning RecommendationType = "warning"
	RecommendInfo    RecommendationType = "info"
	RecommendSuccess RecommendationType = "success"
)

// AIRecommendation is a derived, threshold-based advice record.
type AIRecommendation struct {
	Type       RecommendationType `json:"type"`
	Message    string             `json:"message"`
	Priority   int                `json:"priority"`
	Confidence float64            `json:"confidence"`
}
