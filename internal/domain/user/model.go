package user

import "time"

// User is an authenticated account. Subject is the stable identifier issued
// by the identity provider; email and name are optional profile fields.
type User struct {
	ID        string    `json:"id"`
	Subject   string    `json:"-"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterInput carries the payload to create a user record for a verified
// identity subject.
type RegisterInput struct {
	Subject string `json:"subject"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}
