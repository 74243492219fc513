// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/repository"
	"github.com/unclebandit/outreach-backend/internal/service"
)

type CampaignHandler struct {
	Repo    repository.CampaignRepositoryInterface
	Service *service.CampaignService
}

// GetCampaign returns the campaign with its counts and delivery log.
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	details, err := h.Service.GetCampaignDetails(id)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(details)
}

func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	campaigns, err := h.Repo.ListByStatus(status)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"data": campaigns})
}

// SearchSent matches a term against subject or body of fully sent
// campaigns.
func (h *CampaignHandler) SearchSent(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		http.Error(w, "missing query parameter q", http.StatusBadRequest)
		return
	}

	results, err := h.Repo.SearchSent(term)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"query": term, "results": results})
}

func (h *CampaignHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Dashboard(time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	recent, err := h.Repo.ListCompleted(5)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"stats": stats, "recent": recent})
}

func (h *CampaignHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Service.Reminders()
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(overview)
}

func writeError(w http.ResponseWriter, err error) {
	var campaignNotFound *appErrors.ErrCampaignNotFound
	var profileNotFound *appErrors.ErrProfileNotFound
	var templateNotFound *appErrors.ErrTemplateNotFound
	if errors.As(err, &campaignNotFound) || errors.As(err, &profileNotFound) || errors.As(err, &templateNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var duplicate *appErrors.ErrDuplicateProfile
	if errors.As(err, &duplicate) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
