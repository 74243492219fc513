// internal/repository/profile_repository.go
package repository

import (
	"database/sql"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/model"
)

// ProfileRepositoryInterface defines methods used by service
type ProfileRepositoryInterface interface {
	GetByID(id string) (*model.Profile, error)
	ListAll() ([]model.Profile, error)
	Create(p *model.Profile) error
	Delete(id string) error
}

// ProfileRepository is the concrete implementation
type ProfileRepository struct {
	DB *sql.DB
}

// GetByID fetches a contact profile by ID. Returns (nil, nil) when absent;
// schedule-time snapshotting treats a missing profile as a null snapshot.
func (r *ProfileRepository) GetByID(id string) (*model.Profile, error) {
	var p model.Profile
	err := r.DB.QueryRow(`
        SELECT id, name, email, title, profession FROM profiles WHERE id = ?
    `, id).Scan(&p.ID, &p.Name, &p.Email, &p.Title, &p.Profession)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) ListAll() ([]model.Profile, error) {
	rows, err := r.DB.Query(`SELECT id, name, email, title, profession FROM profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Title, &p.Profession); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Create inserts a new contact profile. A second profile with the same
// email is rejected.
func (r *ProfileRepository) Create(p *model.Profile) error {
	var exists int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM profiles WHERE email = ?`, p.Email).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return appErrors.NewDuplicateProfile(p.Email)
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err = r.DB.Exec(`
        INSERT INTO profiles (id, name, email, title, profession) VALUES (?, ?, ?, ?, ?)
    `, p.ID, p.Name, p.Email, p.Title, p.Profession)
	return err
}

func (r *ProfileRepository) Delete(id string) error {
	res, err := r.DB.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.NewProfileNotFound(id)
	}
	return nil
}

var _ ProfileRepositoryInterface = (*ProfileRepository)(nil)
