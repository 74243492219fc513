// internal/service/campaign_service.go
package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
	"github.com/unclebandit/outreach-backend/internal/timeutil"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ProfileRepo  repository.ProfileRepositoryInterface
	Settings     *repository.SettingsRepository
	Zone         *timeutil.Zone
}

// ScheduleInput is the UI-facing schedule request. ScheduleTime may be
// empty (send now), naive wall-clock (interpreted in the display timezone)
// or absolute with an explicit offset.
type ScheduleInput struct {
	Subject      string
	Body         string
	BodyIsHTML   bool
	RecipientIDs []string
	ScheduleTime string
	AddSignature bool
	Attachments  []string
	ReminderDate *string
}

// ScheduleCampaign validates the request, snapshots the sender profile and
// creates the campaign with its deliveries.
func (s *CampaignService) ScheduleCampaign(in ScheduleInput) (string, error) {
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Body) == "" {
		return "", fmt.Errorf("subject and body cannot be empty")
	}
	if len(in.RecipientIDs) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}

	scheduleTime := timeutil.NowUTC()
	if strings.TrimSpace(in.ScheduleTime) != "" {
		normalized, err := s.Zone.NormalizeInput(in.ScheduleTime)
		if err != nil {
			return "", fmt.Errorf("invalid schedule time: %w", err)
		}
		scheduleTime = normalized
	}

	if in.ReminderDate != nil {
		if _, err := time.Parse(timeutil.DateLayout, *in.ReminderDate); err != nil {
			return "", fmt.Errorf("invalid reminder date: %w", err)
		}
	}

	sender, err := s.Settings.GetUserProfile()
	if err != nil {
		return "", err
	}
	if sender == nil {
		return "", fmt.Errorf("user profile is not set up")
	}

	return s.CampaignRepo.Schedule(repository.ScheduleRequest{
		Subject:      in.Subject,
		Body:         in.Body,
		BodyIsHTML:   in.BodyIsHTML,
		RecipientIDs: in.RecipientIDs,
		ScheduleTime: scheduleTime,
		Sender:       sender.Snapshot(),
		AddSignature: in.AddSignature,
		Attachments:  in.Attachments,
		ReminderDate: in.ReminderDate,
	})
}

// RenderPreview renders a template body against one contact profile
// without scheduling anything.
func (s *CampaignService) RenderPreview(templateBody, profileID string, appendSignature bool) (string, error) {
	if strings.TrimSpace(templateBody) == "" {
		return "", fmt.Errorf("template cannot be empty")
	}

	profile, err := s.ProfileRepo.GetByID(profileID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", fmt.Errorf("profile not found")
	}

	sender, err := s.Settings.GetUserProfile()
	if err != nil {
		return "", err
	}
	if sender == nil {
		return "", fmt.Errorf("user profile is not set up")
	}

	return Render(
		templateBody,
		RecipientFields(profile.Snapshot()),
		SenderFields(sender.Snapshot()),
		appendSignature,
	), nil
}

// CampaignDetails is a campaign with its per-recipient delivery log.
type CampaignDetails struct {
	*model.Campaign
	Deliveries []*model.Delivery `json:"deliveries"`
}

func (s *CampaignService) GetCampaignDetails(id string) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	deliveries, err := s.CampaignRepo.GetDeliveriesForCampaign(id)
	if err != nil {
		return nil, err
	}
	return &CampaignDetails{Campaign: campaign, Deliveries: deliveries}, nil
}

// DashboardStats summarizes recent outreach activity the way the landing
// page presents it.
type DashboardStats struct {
	SentLast30Days    int `json:"sent_last_30_days"`
	PartialLast30Days int `json:"partial_last_30_days"`
	FailedLast30Days  int `json:"failed_last_30_days"`
	Scheduled         int `json:"scheduled"`
	UpcomingReminders int `json:"upcoming_reminders"`
}

func (s *CampaignService) Dashboard(now time.Time) (*DashboardStats, error) {
	campaigns, err := s.CampaignRepo.ListByStatus("")
	if err != nil {
		return nil, err
	}

	localNow := now.In(s.Zone.Location())
	cutoff := localNow.AddDate(0, 0, -30)
	today := localNow.Format(timeutil.DateLayout)

	stats := &DashboardStats{}
	for _, c := range campaigns {
		switch c.Status {
		case model.CampaignScheduled:
			stats.Scheduled++
		case model.CampaignSent, model.CampaignPartial, model.CampaignFailed:
			if c.SentTime == nil {
				break
			}
			completed, err := s.Zone.ToLocal(*c.SentTime)
			if err != nil || completed.Before(cutoff) {
				break
			}
			switch c.Status {
			case model.CampaignSent:
				stats.SentLast30Days++
			case model.CampaignPartial:
				stats.PartialLast30Days++
			case model.CampaignFailed:
				stats.FailedLast30Days++
			}
		}
		// reminder dates are plain calendar dates; string compare is enough
		if c.ReminderDate != nil && *c.ReminderDate >= today {
			stats.UpcomingReminders++
		}
	}
	return stats, nil
}

// ReminderOverview splits campaigns into those with a reminder set and the
// sent ones a reminder could still be added to.
type ReminderOverview struct {
	Upcoming   []*model.Campaign `json:"upcoming"`
	Candidates []*model.Campaign `json:"candidates"`
}

func (s *CampaignService) Reminders() (*ReminderOverview, error) {
	upcoming, err := s.CampaignRepo.ListWithReminders()
	if err != nil {
		return nil, err
	}
	sent, err := s.CampaignRepo.ListByStatus(model.CampaignSent)
	if err != nil {
		return nil, err
	}

	candidates := []*model.Campaign{}
	for _, c := range sent {
		if c.ReminderDate == nil {
			candidates = append(candidates, c)
		}
	}
	return &ReminderOverview{Upcoming: upcoming, Candidates: candidates}, nil
}
