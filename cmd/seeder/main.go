// cmd/seeder/main.go
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/unclebandit/outreach-backend/internal/config"
	"github.com/unclebandit/outreach-backend/internal/db"
	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	store, err := db.Open(cfg.Store.Path, cfg.Store.BusyTimeout)
	if err != nil {
		log.Fatal("failed to open store:", err)
	}
	defer store.Close()

	profileRepo := &repository.ProfileRepository{DB: store}
	templateRepo := &repository.TemplateRepository{DB: store}
	settingsRepo := &repository.SettingsRepository{DB: store}

	profiles := []model.Profile{
		{Name: "Alice Smith", Email: "alice.smith@example.com", Title: "Dr.", Profession: "Research Lead"},
		{Name: "Bob Jones", Email: "bob.jones@example.com", Title: "Mr.", Profession: "Product Manager"},
		{Name: "Carla Rossi", Email: "carla.rossi@example.com", Title: "Prof.", Profession: "Economist"},
	}
	seeded := 0
	for i := range profiles {
		if err := profileRepo.Create(&profiles[i]); err != nil {
			var dup *appErrors.ErrDuplicateProfile
			if errors.As(err, &dup) {
				continue
			}
			log.Fatalf("failed to seed profile %s: %v", profiles[i].Email, err)
		}
		seeded++
	}
	fmt.Printf("Seeded: %d profile(s)\n", seeded)

	templates := []model.Template{
		{
			Name:    "Introduction",
			Subject: "Great to connect, {name}",
			Body:    "Dear {title} {name},\n\nI enjoyed learning about your work as a {profession}.\n\nBest regards,\n{my_name}",
		},
		{
			Name:    "Follow-up",
			Subject: "Following up on my last email",
			Body:    "Hi {name},\n\nJust checking in on my previous note.\n\n{my_name}\n{my_title}",
		},
	}
	existing, err := templateRepo.ListAll()
	if err != nil {
		log.Fatal("failed to list templates:", err)
	}
	if len(existing) == 0 {
		for i := range templates {
			if err := templateRepo.Create(&templates[i]); err != nil {
				log.Fatalf("failed to seed template %s: %v", templates[i].Name, err)
			}
		}
		fmt.Printf("Seeded: %d template(s)\n", len(templates))
	}

	me, err := settingsRepo.GetUserProfile()
	if err != nil {
		log.Fatal("failed to read user profile:", err)
	}
	if me == nil {
		err = settingsRepo.UpsertUserProfile(&model.UserProfile{
			Name:       "Sam Sender",
			Email:      os.Getenv("SMTP_FROM"),
			Title:      "Mr.",
			Profession: "Consultant",
			Signature:  "Sam Sender\nConsultant",
		})
		if err != nil {
			log.Fatal("failed to seed user profile:", err)
		}
		fmt.Println("Seeded: user profile")
	}

	fmt.Println("Database seeding completed successfully!")
}
