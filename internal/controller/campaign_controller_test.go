// internal/controller/campaign_controller_test.go
package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/outreach-backend/internal/controller"
	"github.com/unclebandit/outreach-backend/internal/db"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
	"github.com/unclebandit/outreach-backend/internal/service"
	"github.com/unclebandit/outreach-backend/internal/timeutil"
)

type testEnv struct {
	router  *chi.Mux
	svc     *service.CampaignService
	repo    *repository.CampaignRepository
	profile string // seeded contact profile id
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "test.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	campaignRepo := &repository.CampaignRepository{DB: store}
	profileRepo := &repository.ProfileRepository{DB: store}
	settings := &repository.SettingsRepository{DB: store}
	zone := timeutil.NewZone("UTC", func() (string, error) { return settings.Get(repository.TimezoneKey) })

	svc := &service.CampaignService{
		CampaignRepo: campaignRepo,
		ProfileRepo:  profileRepo,
		Settings:     settings,
		Zone:         zone,
	}

	require.NoError(t, settings.UpsertUserProfile(&model.UserProfile{
		Name: "Sam Sender", Email: "sam@example.com", Signature: "Sam",
	}))
	p := &model.Profile{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, profileRepo.Create(p))

	c := &controller.CampaignController{
		CampaignService: svc,
		CampaignRepo:    campaignRepo,
		Log:             zerolog.Nop(),
	}

	r := chi.NewRouter()
	r.Post("/campaigns", c.ScheduleCampaign)
	r.Post("/campaigns/{id}/cancel", c.CancelCampaign)
	r.Put("/campaigns/{id}/reminder", c.SetReminder)
	r.Delete("/campaigns/{id}/reminder", c.ClearReminder)
	r.Post("/campaigns/preview", c.PersonalizedPreview)

	return &testEnv{router: r, svc: svc, repo: campaignRepo, profile: p.ID}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestScheduleCampaignEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/campaigns", map[string]any{
		"subject":       "Hello",
		"body":          "Hi {name}",
		"recipient_ids": []string{env.profile},
		"schedule_time": "2026-09-01T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp["campaign_id"])

	c, err := env.repo.GetByID(resp["campaign_id"])
	require.NoError(t, err)
	assert.Equal(t, model.CampaignScheduled, c.Status)
	// add_signature defaults to true when omitted
	assert.True(t, c.AddSignature)
}

func TestScheduleCampaignEndpointRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/campaigns", map[string]any{
		"subject": "no body or recipients",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/campaigns", bytes.NewBufferString("{not json"))
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelCampaignEndpoint(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.svc.ScheduleCampaign(service.ScheduleInput{
		Subject: "s", Body: "b", RecipientIDs: []string{env.profile},
		ScheduleTime: timeutil.FormatUTC(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/campaigns/"+id+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result repository.CancelResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 1, result.Canceled)
	assert.True(t, result.CampaignDeleted)

	rec = env.do(t, http.MethodPost, "/campaigns/"+id+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReminderEndpoints(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.svc.ScheduleCampaign(service.ScheduleInput{
		Subject: "s", Body: "b", RecipientIDs: []string{env.profile},
	})
	require.NoError(t, err)

	rec := env.do(t, http.MethodPut, "/campaigns/"+id+"/reminder", map[string]string{"date": "2026-09-15"})
	require.Equal(t, http.StatusOK, rec.Code)

	c, err := env.repo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, c.ReminderDate)
	assert.Equal(t, "2026-09-15", *c.ReminderDate)

	rec = env.do(t, http.MethodDelete, "/campaigns/"+id+"/reminder", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	c, err = env.repo.GetByID(id)
	require.NoError(t, err)
	assert.Nil(t, c.ReminderDate)

	rec = env.do(t, http.MethodPut, "/campaigns/missing/reminder", map[string]string{"date": "2026-09-15"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPersonalizedPreviewEndpoint(t *testing.T) {
	env := newTestEnv(t)

	noSig := false
	rec := env.do(t, http.MethodPost, "/campaigns/preview", map[string]any{
		"template_body": "Hi {name}, from {my_name}",
		"profile_id":    env.profile,
		"add_signature": noSig,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Hi Alice, from Sam Sender", resp["rendered_message"])

	rec = env.do(t, http.MethodPost, "/campaigns/preview", map[string]any{
		"template_body": "Hi {name}",
		"profile_id":    "missing",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
