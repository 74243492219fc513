// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/unclebandit/outreach-backend/internal/config"
	"github.com/unclebandit/outreach-backend/internal/controller"
	"github.com/unclebandit/outreach-backend/internal/db"
	"github.com/unclebandit/outreach-backend/internal/handler"
	"github.com/unclebandit/outreach-backend/internal/repository"
	"github.com/unclebandit/outreach-backend/internal/service"
	"github.com/unclebandit/outreach-backend/internal/timeutil"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Log)

	store, err := db.Open(cfg.Store.Path, cfg.Store.BusyTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	campaignRepo := &repository.CampaignRepository{DB: store}
	profileRepo := &repository.ProfileRepository{DB: store}
	templateRepo := &repository.TemplateRepository{DB: store}
	settingsRepo := &repository.SettingsRepository{DB: store}

	zone := timeutil.NewZone(cfg.App.Timezone, func() (string, error) {
		return settingsRepo.Get(repository.TimezoneKey)
	})

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		ProfileRepo:  profileRepo,
		Settings:     settingsRepo,
		Zone:         zone,
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
		CampaignRepo:    campaignRepo,
		Log:             log,
	}
	campaignHandler := &handler.CampaignHandler{Repo: campaignRepo, Service: campaignService}
	profileHandler := &handler.ProfileHandler{Repo: profileRepo}
	templateHandler := &handler.TemplateHandler{Repo: templateRepo}
	settingsHandler := &handler.SettingsHandler{Repo: settingsRepo, Zone: zone}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns", campaignController.ScheduleCampaign)
	r.Get("/campaigns", campaignHandler.ListCampaigns)
	r.Get("/campaigns/search", campaignHandler.SearchSent)
	r.Get("/campaigns/{id}", campaignHandler.GetCampaign)
	r.Post("/campaigns/{id}/cancel", campaignController.CancelCampaign)
	r.Put("/campaigns/{id}/reminder", campaignController.SetReminder)
	r.Delete("/campaigns/{id}/reminder", campaignController.ClearReminder)
	r.Post("/campaigns/preview", campaignController.PersonalizedPreview)

	// Contact profiles and templates
	r.Get("/profiles", profileHandler.ListProfiles)
	r.Post("/profiles", profileHandler.CreateProfile)
	r.Delete("/profiles/{id}", profileHandler.DeleteProfile)
	r.Get("/templates", templateHandler.ListTemplates)
	r.Post("/templates", templateHandler.CreateTemplate)
	r.Delete("/templates/{id}", templateHandler.DeleteTemplate)

	// Sender identity and settings
	r.Get("/me", settingsHandler.GetUserProfile)
	r.Put("/me", settingsHandler.UpdateUserProfile)
	r.Get("/settings/timezone", settingsHandler.GetTimezone)
	r.Put("/settings/timezone", settingsHandler.SetTimezone)

	// Dashboard
	r.Get("/dashboard", campaignHandler.Dashboard)
	r.Get("/reminders", campaignHandler.ListReminders)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: r,
	}

	go func() {
		log.Info().Uint16("port", cfg.HTTP.Port).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	} else {
		log.Info().Msg("server gracefully stopped")
	}
}

func newLogger(cfg config.Log) zerolog.Logger {
	var out = zerolog.New(os.Stdout)
	if cfg.Pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return out.Level(cfg.ZerologLevel()).With().Timestamp().Logger()
}
