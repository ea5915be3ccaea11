package catalog

import "strings"

// Book represents one record from the BookManager backend. JSON tags follow
// the wire format exactly; the backend assigns the identifier, the owning
// user and the timestamps, and bumps the revision counter on every update.
type Book struct {
	ID              string `json:"_id,omitempty"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	PublicationDate string `json:"publicationDate"`
	Description     string `json:"description"`
	Owner           string `json:"user,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
	Revision        int    `json:"__v,omitempty"`
}

// User is the profile snapshot returned by the auth endpoints and stored
// alongside the session token.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Bio   string `json:"bio,omitempty"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body. The backend validates the
// password confirmation again on its side; the client does not rely on that.
type Registration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ProfilePatch updates the profile. A blank password is omitted from the
// request and keeps the current one.
type ProfilePatch struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	Password string `json:"password,omitempty"`
}

// DateOnly strips the time component from an ISO timestamp. The backend
// returns publication dates as full timestamps; forms edit the date part.
func DateOnly(s string) string {
	if i := strings.Index(s, "T"); i >= 0 {
		return s[:i]
	}
	return s
}
