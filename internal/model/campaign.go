// internal/model/campaign.go
package model

// Campaign statuses. A campaign's status is always derived from its
// delivery counts, never set directly.
const (
	CampaignScheduled = "scheduled"
	CampaignSent      = "sent"
	CampaignPartial   = "partial"
	CampaignFailed    = "failed"
)

// Counts is the campaign-level aggregate over its deliveries.
type Counts struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

// SenderSnapshot is a copy of the user profile captured when the campaign
// is scheduled. Later edits to the user profile do not touch it.
type SenderSnapshot struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Title       string `json:"title"`
	Profession  string `json:"profession"`
	Signature   string `json:"signature"`
	SocialLinks string `json:"social_links"`
}

type Campaign struct {
	ID            string         `db:"id" json:"id"`
	Subject       string         `db:"subject" json:"subject"`
	Body          string         `db:"body" json:"body"`
	BodyIsHTML    bool           `db:"body_is_html" json:"body_is_html"`
	Recipients    []string       `db:"recipients" json:"recipients"`
	SenderProfile SenderSnapshot `db:"sender_profile" json:"sender_profile"`
	Attachments   []string       `db:"attachments" json:"attachments"`
	AddSignature  bool           `db:"add_signature" json:"add_signature"`
	Status        string         `db:"status" json:"status"`
	ScheduleTime  string         `db:"schedule_time" json:"schedule_time"` // canonical UTC
	SentTime      *string        `db:"sent_time" json:"sent_time,omitempty"`
	ReminderDate  *string        `db:"reminder_date" json:"reminder_date,omitempty"` // YYYY-MM-DD
	Counts        Counts         `json:"counts"`
	CreatedAt     string         `db:"created_at" json:"created_at"`
}
