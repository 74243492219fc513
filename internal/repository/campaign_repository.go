// internal/repository/campaign_repository.go
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/timeutil"
)

type CampaignRepositoryInterface interface {
	// Scheduling and campaign reads
	Schedule(req ScheduleRequest) (string, error)
	GetByID(id string) (*model.Campaign, error)
	ListByStatus(status string) ([]*model.Campaign, error)
	ListWithReminders() ([]*model.Campaign, error)
	ListCompleted(limit int) ([]*model.Campaign, error)
	SearchSent(term string) ([]*model.Campaign, error)

	// Deliveries
	GetDeliveriesForCampaign(campaignID string) ([]*model.Delivery, error)
	GetDueDeliveries(now time.Time) ([]*model.Delivery, error)
	ReportOutcome(deliveryID string, outcome Outcome) error

	// Mutation of the aggregate
	CancelPending(campaignID string) (*CancelResult, error)
	RecomputeAggregate(campaignID string) error
	SetReminder(campaignID, date string) error
	ClearReminder(campaignID string) error
}

// ScheduleRequest carries everything needed to create one campaign and its
// per-recipient deliveries. ScheduleTime must already be canonical UTC.
type ScheduleRequest struct {
	Subject      string
	Body         string
	BodyIsHTML   bool
	RecipientIDs []string
	ScheduleTime string
	Sender       model.SenderSnapshot
	AddSignature bool
	Attachments  []string
	ReminderDate *string
}

// Outcome is the sender worker's report for one delivery: either sent with
// the rendered body, or failed with a reason code.
type Outcome struct {
	Sent         bool
	RenderedBody string
	Reason       string
}

func SentOutcome(renderedBody string) Outcome {
	return Outcome{Sent: true, RenderedBody: renderedBody}
}

func FailedOutcome(reason string) Outcome {
	return Outcome{Sent: false, Reason: reason}
}

// CancelResult describes what CancelPending removed and what is left.
type CancelResult struct {
	Canceled        int  `json:"canceled"`
	Remaining       int  `json:"remaining"`
	CampaignDeleted bool `json:"campaign_deleted"`
}

type CampaignRepository struct {
	DB *sql.DB
}

// ====================== Scheduling ======================

// Schedule inserts the campaign row and one pending delivery per recipient
// in a single transaction, so a concurrent reader can never observe a
// total count that disagrees with the delivery rows. A recipient id with
// no matching profile gets a nil snapshot; it is not an error.
func (r *CampaignRepository) Schedule(req ScheduleRequest) (string, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	campaignID := uuid.NewString()
	n := len(req.RecipientIDs)

	senderJSON, err := json.Marshal(req.Sender)
	if err != nil {
		return "", err
	}
	recipientsJSON, err := json.Marshal(nonNil(req.RecipientIDs))
	if err != nil {
		return "", err
	}
	attachmentsJSON, err := json.Marshal(nonNil(req.Attachments))
	if err != nil {
		return "", err
	}

	_, err = tx.Exec(`
        INSERT INTO campaigns
            (id, subject, body, body_is_html, recipients, sender_profile, attachments,
             add_signature, status, schedule_time, reminder_date,
             total, pending, sent, failed, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?)
    `,
		campaignID, req.Subject, req.Body, req.BodyIsHTML,
		string(recipientsJSON), string(senderJSON), string(attachmentsJSON),
		req.AddSignature, model.CampaignScheduled, req.ScheduleTime, req.ReminderDate,
		n, n, timeutil.NowUTC(),
	)
	if err != nil {
		return "", err
	}

	for _, recipientID := range req.RecipientIDs {
		profile, err := getProfileTx(tx, recipientID)
		if err != nil {
			return "", err
		}

		var snapshotJSON *string
		var email string
		if profile != nil {
			b, err := json.Marshal(profile.Snapshot())
			if err != nil {
				return "", err
			}
			s := string(b)
			snapshotJSON = &s
			email = profile.Email
		}

		_, err = tx.Exec(`
            INSERT INTO deliveries
                (id, campaign_id, recipient_id, recipient_email, recipient_snapshot,
                 status, schedule_time, attempt_count)
            VALUES (?, ?, ?, ?, ?, 'pending', ?, 0)
        `, uuid.NewString(), campaignID, recipientID, email, snapshotJSON, req.ScheduleTime)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return campaignID, nil
}

func getProfileTx(tx *sql.Tx, id string) (*model.Profile, error) {
	var p model.Profile
	err := tx.QueryRow(`
        SELECT id, name, email, title, profession FROM profiles WHERE id=?
    `, id).Scan(&p.ID, &p.Name, &p.Email, &p.Title, &p.Profession)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ====================== Campaign reads ======================

const campaignColumns = `id, subject, body, body_is_html, recipients, sender_profile,
    attachments, add_signature, status, schedule_time, sent_time, reminder_date,
    total, pending, sent, failed, created_at`

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
	var c model.Campaign
	var recipientsJSON, senderJSON, attachmentsJSON string
	err := row.Scan(
		&c.ID, &c.Subject, &c.Body, &c.BodyIsHTML, &recipientsJSON, &senderJSON,
		&attachmentsJSON, &c.AddSignature, &c.Status, &c.ScheduleTime, &c.SentTime,
		&c.ReminderDate, &c.Counts.Total, &c.Counts.Pending, &c.Counts.Sent,
		&c.Counts.Failed, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(recipientsJSON), &c.Recipients); err != nil {
		return nil, fmt.Errorf("decode recipients for campaign %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(senderJSON), &c.SenderProfile); err != nil {
		return nil, fmt.Errorf("decode sender profile for campaign %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(attachmentsJSON), &c.Attachments); err != nil {
		return nil, fmt.Errorf("decode attachments for campaign %s: %w", c.ID, err)
	}
	return &c, nil
}

func (r *CampaignRepository) GetByID(id string) (*model.Campaign, error) {
	row := r.DB.QueryRow(`SELECT `+campaignColumns+` FROM campaigns WHERE id=?`, id)
	c, err := scanCampaign(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) queryCampaigns(query string, args ...any) ([]*model.Campaign, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// ListByStatus returns campaigns with the given status, soonest schedule
// first. An empty status returns everything.
func (r *CampaignRepository) ListByStatus(status string) ([]*model.Campaign, error) {
	if status == "" {
		return r.queryCampaigns(`SELECT ` + campaignColumns + ` FROM campaigns ORDER BY schedule_time ASC`)
	}
	return r.queryCampaigns(
		`SELECT `+campaignColumns+` FROM campaigns WHERE status=? ORDER BY schedule_time ASC`, status)
}

func (r *CampaignRepository) ListWithReminders() ([]*model.Campaign, error) {
	return r.queryCampaigns(
		`SELECT ` + campaignColumns + ` FROM campaigns WHERE reminder_date IS NOT NULL ORDER BY reminder_date ASC`)
}

// ListCompleted returns the latest campaigns that finished (sent, partial
// or failed), most recent first.
func (r *CampaignRepository) ListCompleted(limit int) ([]*model.Campaign, error) {
	return r.queryCampaigns(`
        SELECT `+campaignColumns+` FROM campaigns
        WHERE status IN ('sent', 'partial', 'failed')
        ORDER BY sent_time DESC LIMIT ?
    `, limit)
}

// SearchSent matches a case-insensitive substring of subject or body,
// restricted to fully sent campaigns. Partial campaigns are deliberately
// excluded. Case folding happens here rather than in SQL: sqlite's
// lower() folds ASCII only.
func (r *CampaignRepository) SearchSent(term string) ([]*model.Campaign, error) {
	candidates, err := r.queryCampaigns(
		`SELECT ` + campaignColumns + ` FROM campaigns WHERE status='sent' ORDER BY sent_time DESC`)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	results := []*model.Campaign{}
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.Subject), needle) ||
			strings.Contains(strings.ToLower(c.Body), needle) {
			results = append(results, c)
		}
	}
	return results, nil
}

// ====================== Deliveries ======================

const deliveryColumns = `id, campaign_id, recipient_id, recipient_email, recipient_snapshot,
    status, error, schedule_time, sent_time, last_attempt, rendered_body, attempt_count`

func scanDelivery(row interface{ Scan(...any) error }) (*model.Delivery, error) {
	var d model.Delivery
	var snapshotJSON *string
	err := row.Scan(
		&d.ID, &d.CampaignID, &d.RecipientID, &d.RecipientEmail, &snapshotJSON,
		&d.Status, &d.Error, &d.ScheduleTime, &d.SentTime, &d.LastAttempt,
		&d.RenderedBody, &d.AttemptCount,
	)
	if err != nil {
		return nil, err
	}
	if snapshotJSON != nil {
		if err := json.Unmarshal([]byte(*snapshotJSON), &d.RecipientSnapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot for delivery %s: %w", d.ID, err)
		}
	}
	return &d, nil
}

func (r *CampaignRepository) queryDeliveries(query string, args ...any) ([]*model.Delivery, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := []*model.Delivery{}
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

func (r *CampaignRepository) GetDeliveriesForCampaign(campaignID string) ([]*model.Delivery, error) {
	return r.queryDeliveries(
		`SELECT `+deliveryColumns+` FROM deliveries WHERE campaign_id=? ORDER BY last_attempt, sent_time`,
		campaignID)
}

// GetDueDeliveries returns every pending delivery whose schedule time is at
// or before now. Canonical timestamps are fixed width, so the TEXT
// comparison in SQL matches temporal order. The result is a point-in-time
// snapshot; rows becoming due during processing show up on the next poll.
func (r *CampaignRepository) GetDueDeliveries(now time.Time) ([]*model.Delivery, error) {
	return r.queryDeliveries(`
        SELECT `+deliveryColumns+` FROM deliveries
        WHERE status='pending' AND schedule_time <= ?
    `, timeutil.FormatUTC(now))
}

// ReportOutcome transitions one delivery from pending to sent or failed,
// then recomputes the owning campaign's aggregate inside the same
// transaction. The transition requires status='pending': reporting twice
// returns ErrDeliveryNotPending and leaves the terminal state untouched.
func (r *CampaignRepository) ReportOutcome(deliveryID string, outcome Outcome) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := timeutil.NowUTC()
	var res sql.Result
	if outcome.Sent {
		res, err = tx.Exec(`
            UPDATE deliveries
            SET status='sent', sent_time=?, last_attempt=?, rendered_body=?,
                error=NULL, attempt_count=attempt_count+1
            WHERE id=? AND status='pending'
        `, now, now, outcome.RenderedBody, deliveryID)
	} else {
		res, err = tx.Exec(`
            UPDATE deliveries
            SET status='failed', error=?, last_attempt=?, attempt_count=attempt_count+1
            WHERE id=? AND status='pending'
        `, outcome.Reason, now, deliveryID)
	}
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var status string
		err := tx.QueryRow(`SELECT status FROM deliveries WHERE id=?`, deliveryID).Scan(&status)
		if err == sql.ErrNoRows {
			return appErrors.NewDeliveryNotFound(deliveryID)
		}
		if err != nil {
			return err
		}
		return appErrors.NewDeliveryNotPending(deliveryID, status)
	}

	var campaignID string
	if err := tx.QueryRow(`SELECT campaign_id FROM deliveries WHERE id=?`, deliveryID).Scan(&campaignID); err != nil {
		return err
	}
	if err := recomputeAggregateTx(tx, campaignID); err != nil {
		return err
	}
	return tx.Commit()
}

// ====================== Aggregate ======================

// recomputeAggregateTx rebuilds counts and status from a full rescan of the
// campaign's deliveries. Counting from scratch instead of incrementing
// keeps the aggregate correct even after a missed update or an external
// edit of the store.
func recomputeAggregateTx(tx *sql.Tx, campaignID string) error {
	rows, err := tx.Query(`
        SELECT status, COUNT(*) FROM deliveries WHERE campaign_id=? GROUP BY status
    `, campaignID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var counts model.Counts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return err
		}
		switch status {
		case model.DeliveryPending:
			counts.Pending = n
		case model.DeliverySent:
			counts.Sent = n
		case model.DeliveryFailed:
			counts.Failed = n
		}
		counts.Total += n
	}
	if err := rows.Err(); err != nil {
		return err
	}

	status := deriveStatus(counts)

	// sent_time marks aggregate completion; stamp it once, when the last
	// pending delivery resolves.
	if counts.Total > 0 && counts.Pending == 0 {
		_, err = tx.Exec(`
            UPDATE campaigns
            SET total=?, pending=?, sent=?, failed=?, status=?,
                sent_time=COALESCE(sent_time, ?)
            WHERE id=?
        `, counts.Total, counts.Pending, counts.Sent, counts.Failed, status,
			timeutil.NowUTC(), campaignID)
	} else {
		_, err = tx.Exec(`
            UPDATE campaigns
            SET total=?, pending=?, sent=?, failed=?, status=?
            WHERE id=?
        `, counts.Total, counts.Pending, counts.Sent, counts.Failed, status, campaignID)
	}
	return err
}

// deriveStatus maps counts to the campaign status:
// pending > 0 -> scheduled; all sent -> sent; all failed -> failed;
// a mix of sent and failed -> partial.
func deriveStatus(c model.Counts) string {
	switch {
	case c.Total == 0 || c.Pending > 0:
		return model.CampaignScheduled
	case c.Failed == 0:
		return model.CampaignSent
	case c.Sent == 0:
		return model.CampaignFailed
	default:
		return model.CampaignPartial
	}
}

// RecomputeAggregate re-derives counts and status for one campaign.
// Idempotent: running it twice without delivery changes is a no-op.
func (r *CampaignRepository) RecomputeAggregate(campaignID string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := campaignExistsTx(tx, campaignID); err != nil {
		return err
	}
	if err := recomputeAggregateTx(tx, campaignID); err != nil {
		return err
	}
	return tx.Commit()
}

func campaignExistsTx(tx *sql.Tx, campaignID string) error {
	var one int
	err := tx.QueryRow(`SELECT 1 FROM campaigns WHERE id=?`, campaignID).Scan(&one)
	if err == sql.ErrNoRows {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	return err
}

// ====================== Cancellation ======================

// CancelPending deletes the campaign's pending deliveries; sent and failed
// rows stay as history. If nothing remains at all, the campaign row itself
// is deleted. Cancellation stops the part that hasn't happened yet.
func (r *CampaignRepository) CancelPending(campaignID string) (*CancelResult, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := campaignExistsTx(tx, campaignID); err != nil {
		return nil, err
	}

	res, err := tx.Exec(`DELETE FROM deliveries WHERE campaign_id=? AND status='pending'`, campaignID)
	if err != nil {
		return nil, err
	}
	canceled, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	var remaining int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM deliveries WHERE campaign_id=?`, campaignID).Scan(&remaining); err != nil {
		return nil, err
	}

	result := &CancelResult{Canceled: int(canceled), Remaining: remaining}
	if remaining == 0 {
		if _, err := tx.Exec(`DELETE FROM campaigns WHERE id=?`, campaignID); err != nil {
			return nil, err
		}
		result.CampaignDeleted = true
	} else if err := recomputeAggregateTx(tx, campaignID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

// ====================== Reminders ======================

// SetReminder stores a calendar date (no time component, no timezone).
func (r *CampaignRepository) SetReminder(campaignID, date string) error {
	if _, err := time.Parse(timeutil.DateLayout, date); err != nil {
		return fmt.Errorf("invalid reminder date %q: %w", date, err)
	}
	return r.updateReminder(campaignID, &date)
}

func (r *CampaignRepository) ClearReminder(campaignID string) error {
	return r.updateReminder(campaignID, nil)
}

func (r *CampaignRepository) updateReminder(campaignID string, date *string) error {
	res, err := r.DB.Exec(`UPDATE campaigns SET reminder_date=? WHERE id=?`, date, campaignID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
