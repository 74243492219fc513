// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/repository"
	"github.com/unclebandit/outreach-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	CampaignRepo    repository.CampaignRepositoryInterface
	Log             zerolog.Logger
}

func (c *CampaignController) ScheduleCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subject      string   `json:"subject"`
		Body         string   `json:"body"`
		BodyIsHTML   bool     `json:"body_is_html"`
		RecipientIDs []string `json:"recipient_ids"`
		ScheduleTime string   `json:"schedule_time"`
		AddSignature *bool    `json:"add_signature"`
		Attachments  []string `json:"attachments"`
		ReminderDate *string  `json:"reminder_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	addSignature := true
	if body.AddSignature != nil {
		addSignature = *body.AddSignature
	}

	campaignID, err := c.CampaignService.ScheduleCampaign(service.ScheduleInput{
		Subject:      body.Subject,
		Body:         body.Body,
		BodyIsHTML:   body.BodyIsHTML,
		RecipientIDs: body.RecipientIDs,
		ScheduleTime: body.ScheduleTime,
		AddSignature: addSignature,
		Attachments:  body.Attachments,
		ReminderDate: body.ReminderDate,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c.Log.Info().Str("campaign_id", campaignID).Int("recipients", len(body.RecipientIDs)).Msg("campaign scheduled")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"campaign_id": campaignID})
}

// CancelCampaign removes the campaign's not-yet-sent deliveries. History
// rows stay; an emptied campaign disappears entirely.
func (c *CampaignController) CancelCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	result, err := c.CampaignRepo.CancelPending(campaignID)
	if err != nil {
		writeRepoError(w, err)
		return
	}

	c.Log.Info().Str("campaign_id", campaignID).Int("canceled", result.Canceled).
		Bool("campaign_deleted", result.CampaignDeleted).Msg("campaign canceled")
	json.NewEncoder(w).Encode(result)
}

func (c *CampaignController) SetReminder(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := c.CampaignRepo.SetReminder(campaignID, body.Date); err != nil {
		writeRepoError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"campaign_id": campaignID, "reminder_date": body.Date})
}

func (c *CampaignController) ClearReminder(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	if err := c.CampaignRepo.ClearReminder(campaignID); err != nil {
		writeRepoError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"campaign_id": campaignID})
}

func (c *CampaignController) PersonalizedPreview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TemplateBody string `json:"template_body"`
		ProfileID    string `json:"profile_id"`
		AddSignature *bool  `json:"add_signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	addSignature := true
	if body.AddSignature != nil {
		addSignature = *body.AddSignature
	}

	rendered, err := c.CampaignService.RenderPreview(body.TemplateBody, body.ProfileID, addSignature)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"rendered_message": rendered,
		"profile_id":       body.ProfileID,
	})
}

func writeRepoError(w http.ResponseWriter, err error) {
	var campaignNotFound *appErrors.ErrCampaignNotFound
	var deliveryNotFound *appErrors.ErrDeliveryNotFound
	if errors.As(err, &campaignNotFound) || errors.As(err, &deliveryNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
