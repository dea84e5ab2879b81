package models

// LegalSection is one published policy document.
type LegalSection struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
	Version string `json:"version"`
	Updated string `json:"updated"` // ISO8601 date
}

// UserList is a page of members for the admin console.
type UserList struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
}
