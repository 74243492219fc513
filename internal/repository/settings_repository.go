// internal/repository/settings_repository.go
package repository

import (
	"database/sql"

	"github.com/unclebandit/outreach-backend/internal/model"
)

// TimezoneKey is the settings key backing the display-timezone resolver.
const TimezoneKey = "timezone"

// SettingsRepository stores small key/value settings plus the single user
// profile row (the sender identity).
type SettingsRepository struct {
	DB *sql.DB
}

// Get returns the value for key, or "" when unset.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.DB.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.DB.Exec(`
        INSERT INTO settings (key, value) VALUES (?, ?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value
    `, key, value)
	return err
}

// GetUserProfile returns the sender identity, or nil when it was never set.
func (r *SettingsRepository) GetUserProfile() (*model.UserProfile, error) {
	var u model.UserProfile
	err := r.DB.QueryRow(`
        SELECT name, email, title, profession, signature, social_links
        FROM user_profile WHERE id = 1
    `).Scan(&u.Name, &u.Email, &u.Title, &u.Profession, &u.Signature, &u.SocialLinks)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *SettingsRepository) UpsertUserProfile(u *model.UserProfile) error {
	_, err := r.DB.Exec(`
        INSERT INTO user_profile (id, name, email, title, profession, signature, social_links)
        VALUES (1, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name=excluded.name, email=excluded.email, title=excluded.title,
            profession=excluded.profession, signature=excluded.signature,
            social_links=excluded.social_links
    `, u.Name, u.Email, u.Title, u.Profession, u.Signature, u.SocialLinks)
	return err
}
