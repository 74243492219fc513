// internal/handler/campaign_handler_test.go
package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/outreach-backend/internal/db"
	"github.com/unclebandit/outreach-backend/internal/handler"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
	"github.com/unclebandit/outreach-backend/internal/service"
	"github.com/unclebandit/outreach-backend/internal/timeutil"
)

type readEnv struct {
	router *chi.Mux
	svc    *service.CampaignService
	repo   *repository.CampaignRepository
	alice  string
}

func newReadEnv(t *testing.T) *readEnv {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "test.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	campaignRepo := &repository.CampaignRepository{DB: store}
	profileRepo := &repository.ProfileRepository{DB: store}
	settings := &repository.SettingsRepository{DB: store}

	svc := &service.CampaignService{
		CampaignRepo: campaignRepo,
		ProfileRepo:  profileRepo,
		Settings:     settings,
		Zone:         timeutil.NewZone("UTC", func() (string, error) { return settings.Get(repository.TimezoneKey) }),
	}

	require.NoError(t, settings.UpsertUserProfile(&model.UserProfile{Name: "Sam", Email: "sam@example.com"}))
	p := &model.Profile{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, profileRepo.Create(p))

	h := &handler.CampaignHandler{Repo: campaignRepo, Service: svc}

	r := chi.NewRouter()
	r.Get("/campaigns", h.ListCampaigns)
	r.Get("/campaigns/search", h.SearchSent)
	r.Get("/campaigns/{id}", h.GetCampaign)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/reminders", h.ListReminders)

	return &readEnv{router: r, svc: svc, repo: campaignRepo, alice: p.ID}
}

func (e *readEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (e *readEnv) scheduleAndComplete(t *testing.T, subject string) string {
	t.Helper()
	id, err := e.svc.ScheduleCampaign(service.ScheduleInput{
		Subject: subject, Body: "hello world", RecipientIDs: []string{e.alice},
		ScheduleTime: timeutil.FormatUTC(time.Now().Add(-time.Minute)),
	})
	require.NoError(t, err)
	due, err := e.repo.GetDueDeliveries(time.Now())
	require.NoError(t, err)
	for _, d := range due {
		require.NoError(t, e.repo.ReportOutcome(d.ID, repository.SentOutcome("x")))
	}
	return id
}

func TestGetCampaignIncludesDeliveryLog(t *testing.T) {
	env := newReadEnv(t)
	id := env.scheduleAndComplete(t, "Quarterly Report")

	rec := env.get(t, "/campaigns/"+id)
	require.Equal(t, http.StatusOK, rec.Code)

	var details struct {
		ID         string            `json:"id"`
		Status     string            `json:"status"`
		Deliveries []*model.Delivery `json:"deliveries"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&details))
	assert.Equal(t, id, details.ID)
	assert.Equal(t, model.CampaignSent, details.Status)
	require.Len(t, details.Deliveries, 1)

	rec = env.get(t, "/campaigns/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCampaignsFiltersByStatus(t *testing.T) {
	env := newReadEnv(t)
	env.scheduleAndComplete(t, "done")

	_, err := env.svc.ScheduleCampaign(service.ScheduleInput{
		Subject: "later", Body: "b", RecipientIDs: []string{env.alice},
		ScheduleTime: timeutil.FormatUTC(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)

	rec := env.get(t, "/campaigns?status=scheduled")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []*model.Campaign `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "later", resp.Data[0].Subject)

	rec = env.get(t, "/campaigns")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 2)
}

func TestSearchSentEndpoint(t *testing.T) {
	env := newReadEnv(t)
	id := env.scheduleAndComplete(t, "Quarterly Report")

	rec := env.get(t, "/campaigns/search?q=quarterly")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []*model.Campaign `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, id, resp.Results[0].ID)

	rec = env.get(t, "/campaigns/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	env := newReadEnv(t)
	env.scheduleAndComplete(t, "done")

	rec := env.get(t, "/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Stats  service.DashboardStats `json:"stats"`
		Recent []*model.Campaign      `json:"recent"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Stats.SentLast30Days)
	assert.Len(t, resp.Recent, 1)
}
