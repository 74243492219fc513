// internal/model/delivery.go
package model

// Delivery statuses. pending transitions exactly once to sent or failed.
const (
	DeliveryPending = "pending"
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
)

// RecipientSnapshot is a copy of the contact profile captured when the
// campaign is scheduled. A delivery whose profile was missing at schedule
// time carries a nil snapshot, not an error.
type RecipientSnapshot struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Title      string `json:"title"`
	Profession string `json:"profession"`
}

type Delivery struct {
	ID                string             `db:"id" json:"id"`
	CampaignID        string             `db:"campaign_id" json:"campaign_id"`
	RecipientID       string             `db:"recipient_id" json:"recipient_id"`
	RecipientEmail    string             `db:"recipient_email" json:"recipient_email"`
	RecipientSnapshot *RecipientSnapshot `db:"recipient_snapshot" json:"recipient_snapshot,omitempty"`
	Status            string             `db:"status" json:"status"`
	Error             *string            `db:"error" json:"error,omitempty"`
	ScheduleTime      string             `db:"schedule_time" json:"schedule_time"` // canonical UTC, fixed at creation
	SentTime          *string            `db:"sent_time" json:"sent_time,omitempty"`
	LastAttempt       *string            `db:"last_attempt" json:"last_attempt,omitempty"`
	RenderedBody      *string            `db:"rendered_body" json:"rendered_body,omitempty"`
	AttemptCount      int                `db:"attempt_count" json:"attempt_count"`
}
