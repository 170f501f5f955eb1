package models

import "time"

// Principal is the persisted account record.
// RefreshToken holds the single bound refresh token; "" means no session.
type Principal struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the principal as seen by handlers and clients: no password
// hash and no refresh token.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile projects out the credential fields.
func (p *Principal) Profile() *Profile {
	return &Profile{
		ID:        p.ID,
		Username:  p.Username,
		Email:     p.Email,
		FullName:  p.FullName,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
