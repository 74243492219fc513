// internal/handler/settings_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
	"github.com/unclebandit/outreach-backend/internal/timeutil"
)

type SettingsHandler struct {
	Repo *repository.SettingsRepository
	Zone *timeutil.Zone
}

func (h *SettingsHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Repo.GetUserProfile()
	if err != nil {
		writeError(w, err)
		return
	}
	if profile == nil {
		http.Error(w, "user profile not set up", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(profile)
}

func (h *SettingsHandler) UpdateUserProfile(w http.ResponseWriter, r *http.Request) {
	var profile model.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Repo.UpsertUserProfile(&profile); err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(&profile)
}

func (h *SettingsHandler) GetTimezone(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"timezone": h.Zone.ResolveName(),
	})
}

// SetTimezone persists a new display timezone. The name must be a valid
// IANA zone; conversions pick it up on the next resolution.
func (h *SettingsHandler) SetTimezone(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(body.Timezone)
	if _, err := time.LoadLocation(name); err != nil || name == "" {
		http.Error(w, "invalid timezone, use a valid IANA name like Europe/Berlin", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Set(repository.TimezoneKey, name); err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"timezone": name})
}
