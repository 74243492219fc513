// internal/model/profile.go
package model

// Profile is a contact the user can address campaigns to.
type Profile struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Email      string `db:"email" json:"email"`
	Title      string `db:"title" json:"title"`
	Profession string `db:"profession" json:"profession"`
}

// Snapshot freezes the profile fields for a delivery row.
func (p *Profile) Snapshot() *RecipientSnapshot {
	return &RecipientSnapshot{
		Name:       p.Name,
		Email:      p.Email,
		Title:      p.Title,
		Profession: p.Profession,
	}
}
