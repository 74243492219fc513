// internal/repository/template_repository.go
package repository

import (
	"database/sql"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/model"
)

type TemplateRepositoryInterface interface {
	GetByID(id string) (*model.Template, error)
	ListAll() ([]model.Template, error)
	Create(t *model.Template) error
	Delete(id string) error
}

type TemplateRepository struct {
	DB *sql.DB
}

func (r *TemplateRepository) GetByID(id string) (*model.Template, error) {
	var t model.Template
	err := r.DB.QueryRow(`
        SELECT id, name, subject, body FROM templates WHERE id = ?
    `, id).Scan(&t.ID, &t.Name, &t.Subject, &t.Body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewTemplateNotFound(id)
		}
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) ListAll() ([]model.Template, error) {
	rows, err := r.DB.Query(`SELECT id, name, subject, body FROM templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		var t model.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Body); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) Create(t *model.Template) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.DB.Exec(`
        INSERT INTO templates (id, name, subject, body) VALUES (?, ?, ?, ?)
    `, t.ID, t.Name, t.Subject, t.Body)
	return err
}

func (r *TemplateRepository) Delete(id string) error {
	res, err := r.DB.Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.NewTemplateNotFound(id)
	}
	return nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
