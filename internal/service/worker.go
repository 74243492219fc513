// internal/service/worker.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/mailer"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
)

// Failure reasons produced by the worker itself, before the transport is
// ever reached.
const (
	ReasonCampaignNotFound = "campaign_not_found"
	ReasonMissingEmail     = "missing_email"
	ReasonUnexpectedError  = "unexpected_error"
)

// WorkerRepository defines the methods the worker needs
type WorkerRepository interface {
	GetDueDeliveries(now time.Time) ([]*model.Delivery, error)
	GetByID(id string) (*model.Campaign, error)
	ReportOutcome(deliveryID string, outcome repository.Outcome) error
}

// Worker is the polling sender loop. It is the only writer of delivery
// outcomes; new campaigns and cancellations come from the server process.
type Worker struct {
	Repo         WorkerRepository
	Mailer       mailer.Mailer
	Refresh      func(ctx context.Context) error
	PollInterval time.Duration
	Log          zerolog.Logger
}

func NewWorker(repo WorkerRepository, m mailer.Mailer, refresh func(ctx context.Context) error, pollInterval time.Duration, log zerolog.Logger) *Worker {
	if pollInterval <= 0 {
		pollInterval = 20 * time.Second
	}
	return &Worker{
		Repo:         repo,
		Mailer:       m,
		Refresh:      refresh,
		PollInterval: pollInterval,
		Log:          log,
	}
}

// Run alternates between idle and processing until the context is
// canceled. Store errors are logged and the loop moves on to the next
// cycle; pending work lives in the store, so nothing is lost.
func (w *Worker) Run(ctx context.Context) error {
	w.Log.Info().Dur("poll_interval", w.PollInterval).Msg("worker started, polling for due deliveries")

	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	w.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			w.Log.Info().Msg("shutdown signal received, exiting worker")
			return nil
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll runs one processing cycle: refresh the store handle so the other
// process's writes are visible, drain the current due batch, return.
func (w *Worker) Poll(ctx context.Context) {
	if w.Refresh != nil {
		if err := w.Refresh(ctx); err != nil {
			w.Log.Error().Err(err).Msg("store refresh failed, skipping cycle")
			return
		}
	}

	due, err := w.Repo.GetDueDeliveries(time.Now())
	if err != nil {
		w.Log.Error().Err(err).Msg("failed to fetch due deliveries")
		return
	}
	if len(due) == 0 {
		return
	}

	w.Log.Info().Int("count", len(due)).Msg("processing due deliveries")
	for _, d := range due {
		w.processDelivery(d)
	}
}

// processDelivery handles exactly one delivery. Anything unexpected is
// recovered here and recorded as a failed outcome so a bad row can never
// abort the batch or crash the loop.
func (w *Worker) processDelivery(d *model.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			w.Log.Error().Str("delivery_id", d.ID).Interface("panic", r).Msg("unexpected error processing delivery")
			w.report(d.ID, repository.FailedOutcome(ReasonUnexpectedError))
		}
	}()

	campaign, err := w.Repo.GetByID(d.CampaignID)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			w.Log.Error().Str("delivery_id", d.ID).Str("campaign_id", d.CampaignID).Msg("campaign not found")
			w.report(d.ID, repository.FailedOutcome(ReasonCampaignNotFound))
			return
		}
		// store error: leave the delivery pending for the next poll
		w.Log.Error().Err(err).Str("delivery_id", d.ID).Msg("failed to load campaign")
		return
	}

	if d.RecipientEmail == "" {
		w.Log.Warn().Str("delivery_id", d.ID).Msg("no recipient email in snapshot")
		w.report(d.ID, repository.FailedOutcome(ReasonMissingEmail))
		return
	}

	body := Render(
		campaign.Body,
		RecipientFields(d.RecipientSnapshot),
		SenderFields(campaign.SenderProfile),
		campaign.AddSignature,
	)

	if err := w.Mailer.Send(d.RecipientEmail, campaign.Subject, body, campaign.Attachments, campaign.BodyIsHTML); err != nil {
		reason := mailer.CodeSendError
		var sendErr *mailer.SendError
		if errors.As(err, &sendErr) {
			reason = sendErr.Code
		}
		w.Log.Error().Err(err).Str("delivery_id", d.ID).Str("to", d.RecipientEmail).Str("reason", reason).Msg("delivery failed")
		w.report(d.ID, repository.FailedOutcome(reason))
		return
	}

	w.Log.Info().Str("delivery_id", d.ID).Str("to", d.RecipientEmail).Msg("delivery sent")
	w.report(d.ID, repository.SentOutcome(body))
}

func (w *Worker) report(deliveryID string, outcome repository.Outcome) {
	if err := w.Repo.ReportOutcome(deliveryID, outcome); err != nil {
		var notPending *appErrors.ErrDeliveryNotPending
		if errors.As(err, &notPending) {
			// someone already resolved this delivery; keep the terminal state
			w.Log.Debug().Str("delivery_id", deliveryID).Str("status", notPending.Status).Msg("outcome already recorded")
			return
		}
		w.Log.Error().Err(err).Str("delivery_id", deliveryID).Msg("failed to record outcome")
	}
}
