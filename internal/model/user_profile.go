// internal/model/user_profile.go
package model

// UserProfile is the single sender identity. It is snapshotted into each
// campaign at schedule time.
type UserProfile struct {
	Name        string `db:"name" json:"name"`
	Email       string `db:"email" json:"email"`
	Title       string `db:"title" json:"title"`
	Profession  string `db:"profession" json:"profession"`
	Signature   string `db:"signature" json:"signature"`
	SocialLinks string `db:"social_links" json:"social_links"`
}

// Snapshot freezes the user profile fields for a campaign row.
func (u *UserProfile) Snapshot() SenderSnapshot {
	return SenderSnapshot{
		Name:        u.Name,
		Email:       u.Email,
		Title:       u.Title,
		Profession:  u.Profession,
		Signature:   u.Signature,
		SocialLinks: u.SocialLinks,
	}
}
